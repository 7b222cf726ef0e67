// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package chat_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/ai"
	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/vault/chat"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// # Fakes

type fakeChatRepository struct {
	byID     map[string]*chat.Chat
	messages map[string][]chat.Message
}

func newFakeChatRepository() *fakeChatRepository {
	return &fakeChatRepository{
		byID:     map[string]*chat.Chat{},
		messages: map[string][]chat.Message{},
	}
}

func (r *fakeChatRepository) Create(_ context.Context, entry *chat.Chat) error {
	r.byID[entry.ID] = entry
	return nil
}

func (r *fakeChatRepository) FindByID(_ context.Context, id string) (*chat.Chat, error) {
	entry, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("Chat not found")
	}
	clone := *entry
	return &clone, nil
}

func (r *fakeChatRepository) List(_ context.Context, userID string, _ pagination.Params) ([]chat.Chat, int, error) {
	var entries []chat.Chat
	for _, entry := range r.byID {
		if entry.UserID == userID {
			entries = append(entries, *entry)
		}
	}
	return entries, len(entries), nil
}

func (r *fakeChatRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return apperr.NotFound("Chat not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeChatRepository) AppendMessages(_ context.Context, chatID string, messages []chat.Message) error {
	r.messages[chatID] = append(r.messages[chatID], messages...)
	return nil
}

func (r *fakeChatRepository) Messages(_ context.Context, chatID string) ([]chat.Message, error) {
	return r.messages[chatID], nil
}

func (r *fakeChatRepository) CountByUserID(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, entry := range r.byID {
		if entry.UserID == userID {
			count++
		}
	}
	return count, nil
}

// fakeContextCache records saves and deletes; errors simulate Redis outages.
type fakeContextCache struct {
	saved   map[string][]ai.ChatMessage
	deleted []string
	saveErr error
}

func newFakeContextCache() *fakeContextCache {
	return &fakeContextCache{saved: map[string][]ai.ChatMessage{}}
}

func (c *fakeContextCache) Save(_ context.Context, conversationID string, messages []ai.ChatMessage) error {
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved[conversationID] = messages
	return nil
}

func (c *fakeContextCache) Delete(_ context.Context, conversationID string) error {
	c.deleted = append(c.deleted, conversationID)
	return nil
}

type chatFixture struct {
	service    *chat.Service
	repository *fakeChatRepository
	cache      *fakeContextCache
}

func newChatFixture() *chatFixture {
	repository := newFakeChatRepository()
	cache := newFakeContextCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := ai.NewEngine(logger)

	return &chatFixture{
		service:    chat.NewService(repository, engine, cache, logger),
		repository: repository,
		cache:      cache,
	}
}

// # Tests

func TestChatService_Create_DefaultTitle(t *testing.T) {
	fixture := newChatFixture()

	entry, err := fixture.service.Create(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, chat.DefaultTitle, entry.Title)

	named, err := fixture.service.Create(context.Background(), "user-1", "Project planning")
	require.NoError(t, err)
	assert.Equal(t, "Project planning", named.Title)
}

func TestChatService_SendMessage(t *testing.T) {
	fixture := newChatFixture()
	ctx := context.Background()

	entry, err := fixture.service.Create(ctx, "user-1", "")
	require.NoError(t, err)

	result, err := fixture.service.SendMessage(ctx, entry.ID, "user-1", "Hello there")
	require.NoError(t, err)

	// Exactly two messages per exchange: the user turn and the reply
	require.Len(t, result.Messages, 2)
	assert.Equal(t, ai.RoleUser, result.Messages[0].Role)
	assert.Equal(t, "Hello there", result.Messages[0].Content)
	assert.Equal(t, ai.RoleAssistant, result.Messages[1].Role)
	assert.Equal(t, ai.PlaceholderReply, result.Messages[1].Content)

	// Both were persisted
	stored, err := fixture.repository.Messages(ctx, entry.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	// The trailing window was cached including the reply
	window := fixture.cache.saved[entry.ID]
	require.Len(t, window, 2)
	assert.Equal(t, ai.RoleAssistant, window[1].Role)
}

func TestChatService_SendMessage_HistoryGrows(t *testing.T) {
	fixture := newChatFixture()
	ctx := context.Background()

	entry, err := fixture.service.Create(ctx, "user-1", "")
	require.NoError(t, err)

	_, err = fixture.service.SendMessage(ctx, entry.ID, "user-1", "First")
	require.NoError(t, err)

	result, err := fixture.service.SendMessage(ctx, entry.ID, "user-1", "Second")
	require.NoError(t, err)

	require.Len(t, result.Messages, 4)
	assert.Equal(t, "First", result.Messages[0].Content)
	assert.Equal(t, "Second", result.Messages[2].Content)
}

func TestChatService_SendMessage_CacheFailureIgnored(t *testing.T) {
	fixture := newChatFixture()
	fixture.cache.saveErr = assert.AnError
	ctx := context.Background()

	entry, err := fixture.service.Create(ctx, "user-1", "")
	require.NoError(t, err)

	// A dead cache must not fail the exchange
	result, err := fixture.service.SendMessage(ctx, entry.ID, "user-1", "Hello")
	require.NoError(t, err)
	assert.Len(t, result.Messages, 2)
}

func TestChatService_OwnershipEnforced(t *testing.T) {
	fixture := newChatFixture()
	ctx := context.Background()

	entry, err := fixture.service.Create(ctx, "user-1", "")
	require.NoError(t, err)

	_, err = fixture.service.Get(ctx, entry.ID, "user-2")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
	assert.Equal(t, "Not authorized to access this chat", appErr.Message)

	_, err = fixture.service.SendMessage(ctx, entry.ID, "user-2", "hi")
	require.NotNil(t, apperr.As(err))

	err = fixture.service.Delete(ctx, entry.ID, "user-2")
	require.NotNil(t, apperr.As(err))
}

func TestChatService_Delete_EvictsContext(t *testing.T) {
	fixture := newChatFixture()
	ctx := context.Background()

	entry, err := fixture.service.Create(ctx, "user-1", "")
	require.NoError(t, err)

	require.NoError(t, fixture.service.Delete(ctx, entry.ID, "user-1"))
	assert.Contains(t, fixture.cache.deleted, entry.ID)

	_, err = fixture.service.Get(ctx, entry.ID, "user-1")
	assert.Error(t, err)
}

func TestChatService_Count(t *testing.T) {
	fixture := newChatFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fixture.service.Create(ctx, "user-1", "")
		require.NoError(t, err)
	}
	_, err := fixture.service.Create(ctx, "user-2", "")
	require.NoError(t, err)

	count, err := fixture.service.Count(ctx, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
