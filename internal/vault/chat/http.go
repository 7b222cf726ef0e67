// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file provides the HTTP delivery layer for the chat domain.

package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault/mindvault/internal/platform/middleware"
	requestutil "github.com/mindvault/mindvault/internal/platform/request"
	"github.com/mindvault/mindvault/internal/platform/respond"
	"github.com/mindvault/mindvault/internal/platform/validate"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// Handler implements the HTTP layer for the chat domain.
type Handler struct {
	chatService *Service
}

// NewHandler constructs a new chat [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{chatService: service}
}

// Routes returns a [chi.Router] configured with the chat domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Post("/{id}/message", handler.sendMessage)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Payloads

type createChatRequest struct {
	Title string `json:"title"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// # Endpoints

/*
POST /api/v1/chats.

Description: Starts a new empty conversation. A blank title falls back to
"New Chat".

Response:
  - 201: Chat: Created conversation
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createChatRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.MaxLen("title", input.Title, 255)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.chatService.Create(request.Context(), userID, input.Title)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
GET /api/v1/chats.

Description: Lists the authenticated user's conversations, newest first.

Response:
  - 200: []Chat with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	entries, total, err := handler.chatService.List(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/chats/{id}.

Response:
  - 200: ChatWithMessages: Conversation with full ordered history
  - 403: Chat belongs to another user
  - 404: Chat not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.chatService.Get(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
POST /api/v1/chats/{id}/message.

Description: Appends the user's message and the assistant's generated reply.

Request:
  - Body: sendMessageRequest (Content required)

Response:
  - 200: ChatWithMessages: Conversation including both new messages
  - 403: Chat belongs to another user
  - 404: Chat not found
*/
func (handler *Handler) sendMessage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input sendMessageRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("content", input.Content)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.chatService.SendMessage(request.Context(), requestutil.ID(request, "id"), userID, input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
DELETE /api/v1/chats/{id}.

Response:
  - 204: Deleted
  - 403: Chat belongs to another user
  - 404: Chat not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.chatService.Delete(request.Context(), requestutil.ID(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
