// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package chat implements persisted AI conversations.

A chat is a user-owned conversation; its messages live in their own table and
are always returned in insertion order. Sending a message appends the user's
turn, asks the engine for a completion over the full history, and appends the
assistant's reply, so every exchange adds exactly two messages.
*/
package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mindvault/mindvault/internal/ai"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// Chat is a user-owned conversation shell. Messages are stored separately.
type Chat struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Title     string          `json:"title"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Message is a single turn inside a chat.
type Message struct {
	ID        string         `json:"id"`
	ChatID    string         `json:"chatId"`
	Role      ai.MessageRole `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ChatWithMessages is the hydrated read model returned by Get.
type ChatWithMessages struct {
	Chat
	Messages []Message `json:"messages"`
}

// Repository defines the persistence contract for chats and their messages.
type Repository interface {

	/*
		Create persists a new empty chat.

		Parameters:
		  - context: context.Context
		  - chat: *Chat

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, chat *Chat) error

	/*
		FindByID returns the chat with the given ID, regardless of owner.
		Ownership enforcement is the service's responsibility.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Chat: Conversation shell without messages
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Chat, error)

	/*
		List returns a page of a user's chats, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - params: pagination.Params

		Returns:
		  - []Chat: Page of chats
		  - int: Total count
		  - error: Retrieval failures
	*/
	List(context context.Context, userID string, params pagination.Params) ([]Chat, int, error)

	/*
		SoftDelete hides a chat without removing its rows.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	/*
		AppendMessages atomically appends messages to a chat and advances
		the chat's updatedat.

		Parameters:
		  - context: context.Context
		  - chatID: string
		  - messages: []Message

		Returns:
		  - error: Persistence failures
	*/
	AppendMessages(context context.Context, chatID string, messages []Message) error

	/*
		Messages returns all messages of a chat in insertion order.

		Parameters:
		  - context: context.Context
		  - chatID: string

		Returns:
		  - []Message: Ordered history
		  - error: Retrieval failures
	*/
	Messages(context context.Context, chatID string) ([]Message, error)

	/*
		CountByUserID returns the number of live chats a user owns.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int64: Chat count
		  - error: Retrieval failures
	*/
	CountByUserID(context context.Context, userID string) (int64, error)
}
