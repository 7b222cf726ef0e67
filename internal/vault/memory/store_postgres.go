// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file implements the storage layer for the memory domain using PostgreSQL.
//
// # Soft Deletion
//
// Rows are never removed. SoftDelete stamps deletedat and every read query
// filters on "deletedat IS NULL", so a deleted memory is invisible to the
// API while remaining recoverable at the database level.

package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/platform/dberr"
	"github.com/mindvault/mindvault/pkg/pagination"
)

const memoryColumns = `id, userid, title, content, type, status, tags, metadata, processedat, createdat, updatedat`

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanMemory(row pgx.Row) (*Memory, error) {
	entry := &Memory{}
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Title,
		&entry.Content,
		&entry.Type,
		&entry.Status,
		&entry.Tags,
		&entry.Metadata,
		&entry.ProcessedAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Create persists a new memory into the vault.memory table.
func (r *PostgresRepository) Create(ctx context.Context, memory *Memory) error {
	now := time.Now()
	if memory.CreatedAt.IsZero() {
		memory.CreatedAt = now
	}
	if memory.UpdatedAt.IsZero() {
		memory.UpdatedAt = now
	}
	if memory.Tags == nil {
		memory.Tags = []string{}
	}

	query := `
		INSERT INTO vault.memory (id, userid, title, content, type, status, tags, metadata, processedat, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.UserID,
		memory.Title,
		memory.Content,
		memory.Type,
		memory.Status,
		memory.Tags,
		memory.Metadata,
		memory.ProcessedAt,
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("memory_store_create_failed: %w", err)
	}
	return nil
}

// FindByID returns a single live memory by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM vault.memory WHERE id = $1 AND deletedat IS NULL`

	entry, err := scanMemory(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Memory not found")
		}
		return nil, fmt.Errorf("memory_store_find_failed: %w", err)
	}
	return entry, nil
}

// Update persists the mutable fields of a memory and advances updatedat.
func (r *PostgresRepository) Update(ctx context.Context, memory *Memory) error {
	memory.UpdatedAt = time.Now()

	query := `
		UPDATE vault.memory
		SET title = $2, content = $3, status = $4, tags = $5, metadata = $6, processedat = $7, updatedat = $8
		WHERE id = $1 AND deletedat IS NULL`

	tag, err := r.pool.Exec(ctx, query,
		memory.ID,
		memory.Title,
		memory.Content,
		memory.Status,
		memory.Tags,
		memory.Metadata,
		memory.ProcessedAt,
		memory.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("memory_store_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Memory not found")
	}
	return nil
}

// SoftDelete stamps deletedat, hiding the memory from all read paths.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE vault.memory SET deletedat = NOW() WHERE id = $1 AND deletedat IS NULL`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("memory_store_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Memory not found")
	}
	return nil
}

// List returns a filtered page of a user's memories, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, filters Filters, params pagination.Params) ([]Memory, int, error) {
	where := `WHERE userid = $1 AND deletedat IS NULL`
	args := []any{userID}

	if filters.Type != "" {
		args = append(args, filters.Type)
		where += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filters.Tag != "" {
		args = append(args, filters.Tag)
		where += fmt.Sprintf(` AND $%d = ANY(tags)`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM vault.memory ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("memory_store_count_failed: %w", err)
	}

	args = append(args, params.Limit, params.Offset())
	query := fmt.Sprintf(`SELECT `+memoryColumns+` FROM vault.memory %s ORDER BY createdat DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("memory_store_list_failed: %w", err)
	}
	defer rows.Close()

	entries := []Memory{}
	for rows.Next() {
		entry, err := scanMemory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("memory_store_scan_failed: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("memory_store_rows_failed: %w", err)
	}

	return entries, total, nil
}

// Search matches query against title and content with case-insensitive
// substring semantics, newest first.
func (r *PostgresRepository) Search(ctx context.Context, userID, query string, limit int) ([]Memory, error) {
	sql := `
		SELECT ` + memoryColumns + `
		FROM vault.memory
		WHERE userid = $1 AND deletedat IS NULL
		  AND (title ILIKE $2 OR content ILIKE $2)
		ORDER BY createdat DESC
		LIMIT $3`

	pattern := "%" + query + "%"

	rows, err := r.pool.Query(ctx, sql, userID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("memory_store_search_failed: %w", err)
	}
	defer rows.Close()

	entries := []Memory{}
	for rows.Next() {
		entry, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("memory_store_scan_failed: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory_store_rows_failed: %w", err)
	}

	return entries, nil
}

// CountByType groups a user's live memories by type.
func (r *PostgresRepository) CountByType(ctx context.Context, userID string) (map[string]int64, error) {
	query := `
		SELECT type, COUNT(*)
		FROM vault.memory
		WHERE userid = $1 AND deletedat IS NULL
		GROUP BY type`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("memory_store_count_by_type_failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var memoryType string
		var count int64
		if err := rows.Scan(&memoryType, &count); err != nil {
			return nil, fmt.Errorf("memory_store_scan_failed: %w", err)
		}
		counts[memoryType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory_store_rows_failed: %w", err)
	}

	return counts, nil
}

// # Links

// CreateLink persists a directed edge. The unique index on
// (memoryid, targetid) turns duplicate links into a Conflict.
func (r *PostgresRepository) CreateLink(ctx context.Context, link *Link) error {
	query := `
		INSERT INTO vault.memorylink (id, memoryid, targetid, relation, createdat)
		VALUES ($1, $2, $3, $4, NOW())`

	_, err := r.pool.Exec(ctx, query, link.ID, link.MemoryID, link.TargetID, string(link.Relation))
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Memory link already exists")
		}
		return fmt.Errorf("memory_store_create_link_failed: %w", err)
	}

	return nil
}

// Related returns the live memories the given one links to, newest edge first.
func (r *PostgresRepository) Related(ctx context.Context, id string, limit int) ([]Memory, error) {
	query := `
		SELECT m.id, m.userid, m.title, m.content, m.type, m.status, m.tags, m.metadata, m.processedat, m.createdat, m.updatedat
		FROM vault.memorylink l
		JOIN vault.memory m ON m.id = l.targetid
		WHERE l.memoryid = $1 AND m.deletedat IS NULL
		ORDER BY l.createdat DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, id, limit)
	if err != nil {
		return nil, fmt.Errorf("memory_store_related_failed: %w", err)
	}
	defer rows.Close()

	entries := []Memory{}
	for rows.Next() {
		entry, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("memory_store_scan_failed: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("memory_store_rows_failed: %w", err)
	}

	return entries, nil
}
