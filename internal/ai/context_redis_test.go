// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package ai_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/ai"
)

func newTestContextStore(t *testing.T) (*miniredis.Miniredis, *ai.RedisContextStore) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, ai.NewContextStore(client)
}

/*
TestRedisContextStore covers the cache round-trip and the namespaced key.
*/
func TestRedisContextStore(t *testing.T) {
	server, store := newTestContextStore(t)
	ctx := context.Background()

	window := []ai.ChatMessage{
		{Role: ai.RoleUser, Content: "Hello"},
		{Role: ai.RoleAssistant, Content: "Hi!"},
	}

	require.NoError(t, store.Save(ctx, "chat-1", window))
	assert.True(t, server.Exists("ai:context:chat-1"))
	assert.InDelta(t, ai.ContextTTL, server.TTL("ai:context:chat-1"), float64(ai.ContextTTL)/100)

	loaded, err := store.Load(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, window, loaded)

	require.NoError(t, store.Delete(ctx, "chat-1"))

	loaded, err = store.Load(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

/*
TestRedisContextStore_WindowTrimmed ensures only the trailing twenty messages
survive a save.
*/
func TestRedisContextStore_WindowTrimmed(t *testing.T) {
	_, store := newTestContextStore(t)
	ctx := context.Background()

	var messages []ai.ChatMessage
	for i := 0; i < 25; i++ {
		messages = append(messages, ai.ChatMessage{
			Role:    ai.RoleUser,
			Content: fmt.Sprintf("message-%d", i),
		})
	}

	require.NoError(t, store.Save(ctx, "chat-1", messages))

	loaded, err := store.Load(ctx, "chat-1")
	require.NoError(t, err)

	require.Len(t, loaded, 20)
	assert.Equal(t, "message-5", loaded[0].Content)
	assert.Equal(t, "message-24", loaded[19].Content)
}

/*
TestRedisContextStore_MissingIsNotError verifies the PostgreSQL fallback
contract: absence yields nil, nil.
*/
func TestRedisContextStore_MissingIsNotError(t *testing.T) {
	_, store := newTestContextStore(t)

	loaded, err := store.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
