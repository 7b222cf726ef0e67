// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ContextTTL bounds how long a cached conversation window survives between
// completions.
const ContextTTL = 24 * time.Hour

// contextWindow is the number of trailing messages cached per conversation.
const contextWindow = 20

// RedisContextStore caches the trailing message window of a conversation so
// a future provider integration can resume context without rehydrating the
// full history from PostgreSQL.
type RedisContextStore struct {
	client *redis.Client
}

// NewContextStore creates a new Redis-backed conversation context cache.
func NewContextStore(client *redis.Client) *RedisContextStore {
	return &RedisContextStore{client: client}
}

/*
Save caches the trailing window of a conversation's messages.

Parameters:
  - context: context.Context
  - conversationID: string
  - messages: []ChatMessage (only the trailing window is kept)

Returns:
  - error: Serialization or storage failures
*/
func (store *RedisContextStore) Save(context context.Context, conversationID string, messages []ChatMessage) error {
	if len(messages) > contextWindow {
		messages = messages[len(messages)-contextWindow:]
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("ai_context_marshal_failed: %w", err)
	}

	key := fmt.Sprintf("ai:context:%s", conversationID)

	if err := store.client.Set(context, key, payload, ContextTTL).Err(); err != nil {
		return fmt.Errorf("ai_context_save_failed: %w", err)
	}
	return nil
}

/*
Load returns the cached message window for a conversation.

Description: A missing or expired window is not an error; the caller falls
back to PostgreSQL. Returns nil messages in that case.

Parameters:
  - context: context.Context
  - conversationID: string

Returns:
  - []ChatMessage: Cached window, or nil when absent
  - error: Connectivity or deserialization failures
*/
func (store *RedisContextStore) Load(context context.Context, conversationID string) ([]ChatMessage, error) {
	key := fmt.Sprintf("ai:context:%s", conversationID)

	payload, err := store.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("ai_context_load_failed: %w", err)
	}

	var messages []ChatMessage
	if err := json.Unmarshal(payload, &messages); err != nil {
		return nil, fmt.Errorf("ai_context_unmarshal_failed: %w", err)
	}
	return messages, nil
}

/*
Delete drops the cached window for a conversation.

Parameters:
  - context: context.Context
  - conversationID: string

Returns:
  - error: Deletion failures
*/
func (store *RedisContextStore) Delete(context context.Context, conversationID string) error {
	key := fmt.Sprintf("ai:context:%s", conversationID)

	if err := store.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("ai_context_delete_failed: %w", err)
	}
	return nil
}
