// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file implements the storage layer for the chat domain using PostgreSQL.
//
// AppendMessages runs in a transaction so the message inserts and the parent
// chat's updatedat bump land together.

package chat

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

const chatColumns = `id, userid, title, metadata, createdat, updatedat`

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanChat(row pgx.Row) (*Chat, error) {
	entry := &Chat{}
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Title,
		&entry.Metadata,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Create persists a new chat into the vault.chat table.
func (r *PostgresRepository) Create(ctx context.Context, chat *Chat) error {
	now := time.Now()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	if chat.UpdatedAt.IsZero() {
		chat.UpdatedAt = now
	}

	query := `
		INSERT INTO vault.chat (id, userid, title, metadata, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		chat.ID,
		chat.UserID,
		chat.Title,
		chat.Metadata,
		chat.CreatedAt,
		chat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("chat_store_create_failed: %w", err)
	}
	return nil
}

// FindByID returns a single live chat by primary key.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM vault.chat WHERE id = $1 AND deletedat IS NULL`

	entry, err := scanChat(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Chat not found")
		}
		return nil, fmt.Errorf("chat_store_find_failed: %w", err)
	}
	return entry, nil
}

// List returns a page of a user's live chats, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, params pagination.Params) ([]Chat, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM vault.chat WHERE userid = $1 AND deletedat IS NULL`
	if err := r.pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("chat_store_count_failed: %w", err)
	}

	query := `
		SELECT ` + chatColumns + `
		FROM vault.chat
		WHERE userid = $1 AND deletedat IS NULL
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("chat_store_list_failed: %w", err)
	}
	defer rows.Close()

	entries := []Chat{}
	for rows.Next() {
		entry, err := scanChat(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("chat_store_scan_failed: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("chat_store_rows_failed: %w", err)
	}

	return entries, total, nil
}

// SoftDelete stamps deletedat on the chat. Messages stay in place; they are
// unreachable once the parent chat is hidden.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE vault.chat SET deletedat = NOW() WHERE id = $1 AND deletedat IS NULL`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("chat_store_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Chat not found")
	}
	return nil
}

// AppendMessages inserts messages and bumps the parent chat's updatedat in
// one transaction.
func (r *PostgresRepository) AppendMessages(ctx context.Context, chatID string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("chat_store_begin_failed: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO vault.chatmessage (id, chatid, role, content, createdat)
		VALUES ($1, $2, $3, $4, $5)`

	for _, message := range messages {
		if _, err := tx.Exec(ctx, insert,
			message.ID,
			chatID,
			message.Role,
			message.Content,
			message.CreatedAt,
		); err != nil {
			return fmt.Errorf("chat_store_append_failed: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE vault.chat SET updatedat = NOW() WHERE id = $1`, chatID); err != nil {
		return fmt.Errorf("chat_store_touch_failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("chat_store_commit_failed: %w", err)
	}
	return nil
}

// Messages returns the full ordered history of a chat. UUIDv7 message IDs
// are time-sortable, so ordering by id preserves insertion order.
func (r *PostgresRepository) Messages(ctx context.Context, chatID string) ([]Message, error) {
	query := `
		SELECT id, chatid, role, content, createdat
		FROM vault.chatmessage
		WHERE chatid = $1
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("chat_store_messages_failed: %w", err)
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		message := Message{}
		if err := rows.Scan(
			&message.ID,
			&message.ChatID,
			&message.Role,
			&message.Content,
			&message.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("chat_store_scan_failed: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat_store_rows_failed: %w", err)
	}

	return messages, nil
}

// CountByUserID returns the number of live chats a user owns.
func (r *PostgresRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM vault.chat WHERE userid = $1 AND deletedat IS NULL`

	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("chat_store_count_by_user_failed: %w", err)
	}
	return count, nil
}
