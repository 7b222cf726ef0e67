// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file provides the HTTP delivery layer for the memory domain.
//
// All endpoints operate on the authenticated user's own memories; the
// service layer rejects cross-user access.

package memory

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault/mindvault/internal/platform/middleware"
	requestutil "github.com/mindvault/mindvault/internal/platform/request"
	"github.com/mindvault/mindvault/internal/platform/respond"
	"github.com/mindvault/mindvault/internal/platform/validate"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// Handler implements the HTTP layer for the memory domain.
type Handler struct {
	memoryService *Service
}

// NewHandler constructs a new memory [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{memoryService: service}
}

// Routes returns a [chi.Router] configured with the memory domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/search", handler.search)
	router.Post("/search/semantic", handler.semanticSearch)
	router.Post("/search/hybrid", handler.hybridSearch)
	router.Get("/stats", handler.stats)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)
	router.Get("/{id}/related", handler.related)
	router.Post("/{id}/link/{targetId}", handler.link)

	return router
}

// # Payloads

type createMemoryRequest struct {
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Type     string          `json:"type"`
	Tags     []string        `json:"tags"`
	Metadata json.RawMessage `json:"metadata"`
}

type updateMemoryRequest struct {
	Title    *string         `json:"title"`
	Content  *string         `json:"content"`
	Status   *string         `json:"status"`
	Tags     *[]string       `json:"tags"`
	Metadata json.RawMessage `json:"metadata"`
}

// # Endpoints

/*
POST /api/v1/memories.

Description: Captures a new memory for the authenticated user. New memories
start in draft status.

Request:
  - Body: createMemoryRequest (Title and Type required)

Response:
  - 201: Memory: Created memory
  - 400: ErrInvalidJSON: Bad payload or validation failure
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createMemoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	memoryType := Type(input.Type)
	validator := &validate.Validator{}
	validator.Required("title", input.Title).
		MaxLen("title", input.Title, 255).
		Custom("type", !memoryType.Valid(), "Unknown memory type")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.memoryService.Create(request.Context(), userID, CreateInput{
		Title:    input.Title,
		Content:  input.Content,
		Type:     memoryType,
		Tags:     input.Tags,
		Metadata: input.Metadata,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
GET /api/v1/memories.

Description: Lists the authenticated user's memories, newest first. Supports
type, status and tag query filters plus standard pagination.

Response:
  - 200: []Memory with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filters := Filters{
		Type:   Type(requestutil.Query(request, "type")),
		Status: Status(requestutil.Query(request, "status")),
		Tag:    requestutil.Query(request, "tag"),
	}

	validator := &validate.Validator{}
	validator.Custom("type", filters.Type != "" && !filters.Type.Valid(), "Unknown memory type").
		Custom("status", filters.Status != "" && !filters.Status.Valid(), "Unknown memory status")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	entries, total, err := handler.memoryService.List(request.Context(), userID, filters, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/memories/search?q=...

Description: Case-insensitive text search across the user's memory titles
and contents.

Response:
  - 200: []Memory
  - 400: Missing search query
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := requestutil.Query(request, "q")
	limit, _ := strconv.Atoi(requestutil.Query(request, "limit"))

	entries, err := handler.memoryService.Search(request.Context(), userID, query, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

/*
POST /api/v1/memories/search/semantic.

Description: Vector-similarity search. Currently downgraded to text search
until the AI engine carries a provider.

Request:
  - Body: searchRequest (Query required)

Response:
  - 200: []Memory
  - 400: Missing search query
*/
func (handler *Handler) semanticSearch(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input searchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	entries, err := handler.memoryService.SemanticSearch(request.Context(), userID, input.Query, input.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

/*
POST /api/v1/memories/search/hybrid.

Description: Combined keyword and vector search. Currently downgraded to
text search until the AI engine carries a provider.

Request:
  - Body: searchRequest (Query required)

Response:
  - 200: []Memory
  - 400: Missing search query
*/
func (handler *Handler) hybridSearch(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input searchRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	entries, err := handler.memoryService.HybridSearch(request.Context(), userID, input.Query, input.Limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

/*
GET /api/v1/memories/stats.

Description: Reports the user's memory counts grouped by type.

Response:
  - 200: map of type to count
*/
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	counts, err := handler.memoryService.TypeBreakdown(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, counts)
}

/*
GET /api/v1/memories/{id}.

Response:
  - 200: Memory
  - 403: Memory belongs to another user
  - 404: Memory not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.memoryService.Get(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
PATCH /api/v1/memories/{id}.

Description: Applies partial updates. Absent fields are left unchanged.

Response:
  - 200: Memory: Updated memory
  - 403: Memory belongs to another user
  - 404: Memory not found
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMemoryRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	serviceInput := UpdateInput{
		Title:    input.Title,
		Content:  input.Content,
		Tags:     input.Tags,
		Metadata: input.Metadata,
	}
	if input.Status != nil {
		status := Status(*input.Status)
		serviceInput.Status = &status
	}
	if input.Title != nil {
		validator := &validate.Validator{}
		validator.Required("title", *input.Title).
			MaxLen("title", *input.Title, 255)

		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	entry, err := handler.memoryService.Update(request.Context(), requestutil.ID(request, "id"), userID, serviceInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
POST /api/v1/memories/{id}/link/{targetId}?relationship=related.

Description: Creates a directed relationship edge between two memories the
user owns. The relationship kind defaults to "related".

Response:
  - 201: Link: Created edge
  - 400: Unknown relationship or self-link
  - 403: Either memory belongs to another user
  - 404: Either memory not found
  - 409: Link already exists
*/
func (handler *Handler) link(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	link, err := handler.memoryService.Link(
		request.Context(),
		requestutil.ID(request, "id"),
		requestutil.ID(request, "targetId"),
		userID,
		Relation(requestutil.Query(request, "relationship")),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, link)
}

/*
GET /api/v1/memories/{id}/related?limit=10.

Description: Returns the memories linked from the given one, newest edge
first.

Response:
  - 200: []Memory
  - 403: Memory belongs to another user
  - 404: Memory not found
*/
func (handler *Handler) related(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	limit, _ := strconv.Atoi(requestutil.Query(request, "limit"))

	entries, err := handler.memoryService.Related(request.Context(), requestutil.ID(request, "id"), userID, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entries)
}

/*
DELETE /api/v1/memories/{id}.

Description: Soft-deletes a memory. The row is retained but invisible to
subsequent reads.

Response:
  - 204: Deleted
  - 403: Memory belongs to another user
  - 404: Memory not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.memoryService.Delete(request.Context(), requestutil.ID(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
