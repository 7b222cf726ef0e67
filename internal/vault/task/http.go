// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file provides the HTTP delivery layer for the task domain.

package task

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault/mindvault/internal/platform/middleware"
	requestutil "github.com/mindvault/mindvault/internal/platform/request"
	"github.com/mindvault/mindvault/internal/platform/respond"
	"github.com/mindvault/mindvault/internal/platform/validate"
	"github.com/mindvault/mindvault/pkg/pagination"
	"github.com/mindvault/mindvault/pkg/query"
)

// Handler implements the HTTP layer for the task domain.
type Handler struct {
	taskService *Service
}

// NewHandler constructs a new task [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{taskService: service}
}

// Routes returns a [chi.Router] configured with the task domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/stats", handler.stats)
	router.Get("/{id}", handler.get)
	router.Patch("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Payloads

type createTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"dueDate"`
	Tags        []string        `json:"tags"`
	Metadata    json.RawMessage `json:"metadata"`
}

type updateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	DueDate     *time.Time      `json:"dueDate"`
	ClearDue    bool            `json:"clearDueDate"`
	Tags        *[]string       `json:"tags"`
	Metadata    json.RawMessage `json:"metadata"`
}

// # Endpoints

/*
POST /api/v1/tasks.

Description: Records a new pending task for the authenticated user.

Request:
  - Body: createTaskRequest (Title required)

Response:
  - 201: Task: Created task
  - 400: ErrInvalidJSON: Bad payload or validation failure
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createTaskRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("title", input.Title).
		MaxLen("title", input.Title, 255)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.taskService.Create(request.Context(), userID, CreateInput{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
		Metadata:    input.Metadata,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

/*
GET /api/v1/tasks.

Description: Lists the authenticated user's tasks ordered by due date, then
recency. Supports a status filter and a comma-separated tags filter that
matches tasks carrying any of the given tags.

Response:
  - 200: []Task with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filters := Filters{
		Status: Status(requestutil.Query(request, "status")),
		Tags:   query.StringSlice(requestutil.Query(request, "tags")),
	}

	validator := &validate.Validator{}
	validator.Custom("status", filters.Status != "" && !filters.Status.Valid(), "Unknown task status")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	entries, total, err := handler.taskService.List(request.Context(), userID, filters, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/tasks/stats.

Description: Reports the user's task counts grouped by status.

Response:
  - 200: map of status to count
*/
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	counts, err := handler.taskService.StatusBreakdown(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, counts)
}

/*
GET /api/v1/tasks/{id}.

Response:
  - 200: Task
  - 403: Task belongs to another user
  - 404: Task not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := handler.taskService.Get(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
PATCH /api/v1/tasks/{id}.

Description: Applies partial updates. Setting status to completed stamps the
completion time; clearDueDate removes an existing due date.

Response:
  - 200: Task: Updated task
  - 403: Task belongs to another user
  - 404: Task not found
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateTaskRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	serviceInput := UpdateInput{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		ClearDue:    input.ClearDue,
		Tags:        input.Tags,
		Metadata:    input.Metadata,
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

	entry, err := handler.taskService.Update(request.Context(), requestutil.ID(request, "id"), userID, serviceInput)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
DELETE /api/v1/tasks/{id}.

Response:
  - 204: Deleted
  - 403: Task belongs to another user
  - 404: Task not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.taskService.Delete(request.Context(), requestutil.ID(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
