// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file implements the storage layer for file records using PostgreSQL.
// The bytes themselves live in the object store; only metadata is here.

package file

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

const fileColumns = `id, userid, filename, mimetype, size, type, status, storagekey, createdat, updatedat`

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanFile(row pgx.Row) (*File, error) {
	entry := &File{}
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Filename,
		&entry.MimeType,
		&entry.Size,
		&entry.Type,
		&entry.Status,
		&entry.StorageKey,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Create persists a new file record into the vault.file table.
func (r *PostgresRepository) Create(ctx context.Context, file *File) error {
	now := time.Now()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	if file.UpdatedAt.IsZero() {
		file.UpdatedAt = now
	}

	query := `
		INSERT INTO vault.file (id, userid, filename, mimetype, size, type, status, storagekey, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		file.ID,
		file.UserID,
		file.Filename,
		file.MimeType,
		file.Size,
		file.Type,
		file.Status,
		file.StorageKey,
		file.CreatedAt,
		file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("file_store_create_failed: %w", err)
	}
	return nil
}

// FindByID returns a single live file record by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*File, error) {
	query := `SELECT ` + fileColumns + ` FROM vault.file WHERE id = $1 AND deletedat IS NULL`

	entry, err := scanFile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("File not found")
		}
		return nil, fmt.Errorf("file_store_find_failed: %w", err)
	}
	return entry, nil
}

// UpdateStatus transitions a file record's status and advances updatedat.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query := `UPDATE vault.file SET status = $2, updatedat = NOW() WHERE id = $1 AND deletedat IS NULL`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("file_store_update_status_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("File not found")
	}
	return nil
}

// SoftDelete stamps deletedat, hiding the record from all read paths.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE vault.file SET deletedat = NOW() WHERE id = $1 AND deletedat IS NULL`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("file_store_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("File not found")
	}
	return nil
}

// List returns a filtered page of a user's file records, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, filters Filters, params pagination.Params) ([]File, int, error) {
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

	var total int
	countQuery := `SELECT COUNT(*) FROM vault.file ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("file_store_count_failed: %w", err)
	}

	args = append(args, params.Limit, params.Offset())
	query := fmt.Sprintf(`SELECT `+fileColumns+` FROM vault.file %s ORDER BY createdat DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("file_store_list_failed: %w", err)
	}
	defer rows.Close()

	entries := []File{}
	for rows.Next() {
		entry, err := scanFile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("file_store_scan_failed: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("file_store_rows_failed: %w", err)
	}

	return entries, total, nil
}

// StorageUsed sums the sizes of a user's live records that completed upload.
func (r *PostgresRepository) StorageUsed(ctx context.Context, userID string) (int64, int64, error) {
	var totalBytes, totalFiles int64
	query := `
		SELECT COALESCE(SUM(size), 0), COUNT(*)
		FROM vault.file
		WHERE userid = $1 AND deletedat IS NULL AND status != $2`

	if err := r.pool.QueryRow(ctx, query, userID, StatusUploading).Scan(&totalBytes, &totalFiles); err != nil {
		return 0, 0, fmt.Errorf("file_store_usage_failed: %w", err)
	}
	return totalBytes, totalFiles, nil
}
