// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file provides the HTTP delivery layer for direct engine access.
// Conversational chat with persistence lives in the chat domain; these
// endpoints expose raw one-shot inference.

package ai

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault/mindvault/internal/platform/middleware"
	requestutil "github.com/mindvault/mindvault/internal/platform/request"
	"github.com/mindvault/mindvault/internal/platform/respond"
	"github.com/mindvault/mindvault/internal/platform/validate"
)

// Handler implements the HTTP layer for the engine.
type Handler struct {
	engine *Engine
}

// NewHandler constructs a new engine [Handler].
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes returns a [chi.Router] configured with the engine's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/chat", handler.chat)
	router.Post("/embedding", handler.embedding)
	router.Post("/summarize", handler.summarize)

	return router
}

/*
POST /api/v1/ai/chat.

Description: One-shot chat completion over a caller-supplied message history.

Request:
  - Body: ChatRequest (at least one message, each with a known role)

Response:
  - 200: ChatResponse
  - 400: ErrInvalidJSON: Bad payload or validation failure
*/
func (handler *Handler) chat(writer http.ResponseWriter, request *http.Request) {
	var input ChatRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Custom("messages", len(input.Messages) == 0, "At least one message is required")
	for _, message := range input.Messages {
		if !message.Role.Valid() {
			validator.Custom("messages", true, "Unknown message role")
			break
		}
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	response, err := handler.engine.Chat(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, response)
}

// embeddingRequest accepts either a single string or an array of strings in
// the text field.
type embeddingRequest struct {
	Text  json.RawMessage `json:"text"`
	Model string          `json:"model"`
}

/*
POST /api/v1/ai/embedding.

Description: Generates vector embeddings. The text field accepts a single
string or an array of strings.

Response:
  - 200: EmbeddingResponse
  - 400: ErrInvalidJSON: Bad payload or validation failure
*/
func (handler *Handler) embedding(writer http.ResponseWriter, request *http.Request) {
	var input embeddingRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	texts, ok := decodeTexts(input.Text)

	validator := &validate.Validator{}
	validator.Custom("text", !ok || len(texts) == 0, "Text is required")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	response, err := handler.engine.Embed(request.Context(), EmbeddingRequest{
		Texts: texts,
		Model: input.Model,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, response)
}

/*
POST /api/v1/ai/summarize.

Description: Summarizes a block of text into a summary and key points.

Response:
  - 200: SummarizeResponse
  - 400: ErrInvalidJSON: Bad payload or validation failure
*/
func (handler *Handler) summarize(writer http.ResponseWriter, request *http.Request) {
	var input SummarizeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("text", input.Text)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	response, err := handler.engine.Summarize(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, response)
}

// decodeTexts accepts a raw JSON string or string array.
func decodeTexts(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, true
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, true
	}

	return nil, false
}
