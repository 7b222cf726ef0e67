// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindvault/mindvault/internal/ai"
	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/pkg/pagination"
	"github.com/mindvault/mindvault/pkg/slice"
	"github.com/mindvault/mindvault/pkg/uuidv7"
)

// DefaultTitle is used when a chat is created without one.
const DefaultTitle = "New Chat"

// Completer generates a completion over a message history. Implemented by
// [ai.Engine].
type Completer interface {
	Chat(context context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)
}

// ContextCache caches a conversation's trailing message window. Implemented
// by [ai.RedisContextStore].
type ContextCache interface {
	Save(context context.Context, conversationID string, messages []ai.ChatMessage) error
	Delete(context context.Context, conversationID string) error
}

// Service orchestrates business logic for the chat domain.
type Service struct {
	repository   Repository
	completer    Completer
	contextCache ContextCache
	logger       *slog.Logger
}

// NewService constructs a chat [Service].
func NewService(repository Repository, completer Completer, contextCache ContextCache, logger *slog.Logger) *Service {
	return &Service{
		repository:   repository,
		completer:    completer,
		contextCache: contextCache,
		logger:       logger,
	}
}

/*
Create starts a new empty conversation.

Parameters:
  - context: context.Context
  - userID: string
  - title: string (defaults to [DefaultTitle] when blank)

Returns:
  - *Chat: Created conversation shell
  - error: Storage failures
*/
func (service *Service) Create(context context.Context, userID, title string) (*Chat, error) {
	if title == "" {
		title = DefaultTitle
	}

	entry := &Chat{
		ID:     uuidv7.New(),
		UserID: userID,
		Title:  title,
	}

	if err := service.repository.Create(context, entry); err != nil {
		return nil, fmt.Errorf("chat_service_create_failed: %w", err)
	}

	service.logger.Info("chat_created",
		slog.String("chat_id", entry.ID),
		slog.String("user_id", userID),
	)

	return entry, nil
}

/*
Get returns a conversation with its full message history after verifying
ownership.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - *ChatWithMessages: Conversation and ordered history
  - error: NotFound, Forbidden, or retrieval failures
*/
func (service *Service) Get(context context.Context, id, userID string) (*ChatWithMessages, error) {
	entry, err := service.authorize(context, id, userID)
	if err != nil {
		return nil, err
	}

	messages, err := service.repository.Messages(context, id)
	if err != nil {
		return nil, fmt.Errorf("chat_service_messages_failed: %w", err)
	}

	return &ChatWithMessages{Chat: *entry, Messages: messages}, nil
}

/*
List returns a page of the user's conversations, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []Chat: Page of conversation shells
  - int: Total count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, userID string, params pagination.Params) ([]Chat, int, error) {
	entries, total, err := service.repository.List(context, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("chat_service_list_failed: %w", err)
	}
	return entries, total, nil
}

/*
SendMessage appends the user's message, generates the assistant's reply over
the full history, and appends it.

Description: Exactly two messages are added per call. The updated trailing
window is cached for future provider integrations; cache failures are logged
and ignored.

Parameters:
  - context: context.Context
  - id: string
  - userID: string
  - content: string

Returns:
  - *ChatWithMessages: Conversation including both new messages
  - error: Ownership, engine, or storage failures
*/
func (service *Service) SendMessage(context context.Context, id, userID, content string) (*ChatWithMessages, error) {
	entry, err := service.authorize(context, id, userID)
	if err != nil {
		return nil, err
	}

	history, err := service.repository.Messages(context, id)
	if err != nil {
		return nil, fmt.Errorf("chat_service_messages_failed: %w", err)
	}

	now := time.Now()
	userMessage := Message{
		ID:        uuidv7.New(),
		ChatID:    id,
		Role:      ai.RoleUser,
		Content:   content,
		CreatedAt: now,
	}

	engineHistory := slice.Map(history, func(message Message) ai.ChatMessage {
		return ai.ChatMessage{Role: message.Role, Content: message.Content}
	})
	engineHistory = append(engineHistory, ai.ChatMessage{Role: ai.RoleUser, Content: content})

	completion, err := service.completer.Chat(context, ai.ChatRequest{Messages: engineHistory})
	if err != nil {
		return nil, fmt.Errorf("chat_service_completion_failed: %w", err)
	}

	assistantMessage := Message{
		ID:        uuidv7.New(),
		ChatID:    id,
		Role:      ai.RoleAssistant,
		Content:   completion.Content,
		CreatedAt: time.Now(),
	}

	if err := service.repository.AppendMessages(context, id, []Message{userMessage, assistantMessage}); err != nil {
		return nil, fmt.Errorf("chat_service_append_failed: %w", err)
	}

	window := append(engineHistory, ai.ChatMessage{Role: ai.RoleAssistant, Content: completion.Content})
	if err := service.contextCache.Save(context, id, window); err != nil {
		service.logger.Warn("chat_context_cache_failed",
			slog.String("chat_id", id),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("chat_message_exchanged",
		slog.String("chat_id", id),
		slog.String("user_id", userID),
		slog.Int("history_length", len(history)+2),
	)

	return &ChatWithMessages{
		Chat:     *entry,
		Messages: append(history, userMessage, assistantMessage),
	}, nil
}

/*
Delete soft-deletes a conversation and drops its cached context window.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - error: Ownership or storage failures
*/
func (service *Service) Delete(context context.Context, id, userID string) error {
	if _, err := service.authorize(context, id, userID); err != nil {
		return err
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return fmt.Errorf("chat_service_delete_failed: %w", err)
	}

	if err := service.contextCache.Delete(context, id); err != nil {
		service.logger.Warn("chat_context_evict_failed",
			slog.String("chat_id", id),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("chat_deleted",
		slog.String("chat_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

/*
Count returns the number of live conversations a user owns.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int64: Chat count
  - error: Retrieval failures
*/
func (service *Service) Count(context context.Context, userID string) (int64, error) {
	count, err := service.repository.CountByUserID(context, userID)
	if err != nil {
		return 0, fmt.Errorf("chat_service_count_failed: %w", err)
	}
	return count, nil
}

func (service *Service) authorize(context context.Context, id, userID string) (*Chat, error) {
	entry, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if entry.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to access this chat")
	}

	return entry, nil
}
