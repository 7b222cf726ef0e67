// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file implements the storage layer for the task domain using PostgreSQL.

package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/pkg/pagination"
)

const taskColumns = `id, userid, title, description, status, duedate, tags, metadata, completedat, createdat, updatedat`

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanTask(row pgx.Row) (*Task, error) {
	entry := &Task{}
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Title,
		&entry.Description,
		&entry.Status,
		&entry.DueDate,
		&entry.Tags,
		&entry.Metadata,
		&entry.CompletedAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Create persists a new task into the vault.task table.
func (r *PostgresRepository) Create(ctx context.Context, task *Task) error {
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	query := `
		INSERT INTO vault.task (id, userid, title, description, status, duedate, tags, metadata, completedat, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.Tags,
		task.Metadata,
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("task_store_create_failed: %w", err)
	}
	return nil
}

// FindByID returns a single live task by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM vault.task WHERE id = $1 AND deletedat IS NULL`

	entry, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, fmt.Errorf("task_store_find_failed: %w", err)
	}
	return entry, nil
}

// Update persists the mutable fields of a task and advances updatedat.
func (r *PostgresRepository) Update(ctx context.Context, task *Task) error {
	task.UpdatedAt = time.Now()

	query := `
		UPDATE vault.task
		SET title = $2, description = $3, status = $4, duedate = $5, tags = $6, metadata = $7, completedat = $8, updatedat = $9
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.Tags,
		task.Metadata,
		task.CompletedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("task_store_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Task not found")
	}
	return nil
}

// SoftDelete stamps deletedat, hiding the task from all read paths.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE vault.task SET deletedat = NOW() WHERE id = $1 AND deletedat IS NULL`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("task_store_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Task not found")
	}
	return nil
}

// List returns a filtered page of a user's tasks. Tasks with a due date come
// first in ascending order; undated tasks follow, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, filters Filters, params pagination.Params) ([]Task, int, error) {
	where := `WHERE userid = $1 AND deletedat IS NULL`
	args := []any{userID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if len(filters.Tags) > 0 {
		args = append(args, filters.Tags)
		where += fmt.Sprintf(` AND tags && $%d`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM vault.task ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("task_store_count_failed: %w", err)
	}

	args = append(args, params.Limit, params.Offset())
	query := fmt.Sprintf(`SELECT `+taskColumns+` FROM vault.task %s ORDER BY duedate ASC NULLS LAST, createdat DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("task_store_list_failed: %w", err)
	}
	defer rows.Close()

	entries := []Task{}
	for rows.Next() {
		entry, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("task_store_scan_failed: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("task_store_rows_failed: %w", err)
	}

	return entries, total, nil
}

// CountByStatus groups a user's live tasks by status.
func (r *PostgresRepository) CountByStatus(ctx context.Context, userID string) (map[string]int64, error) {
	query := `
		SELECT status, COUNT(*)
		FROM vault.task
		WHERE userid = $1 AND deletedat IS NULL
		GROUP BY status`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("task_store_count_by_status_failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("task_store_scan_failed: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task_store_rows_failed: %w", err)
	}

	return counts, nil
}
