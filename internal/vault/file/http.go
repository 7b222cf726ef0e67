// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// This file provides the HTTP delivery layer for the file domain.

package file

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault/mindvault/internal/platform/middleware"
	requestutil "github.com/mindvault/mindvault/internal/platform/request"
	"github.com/mindvault/mindvault/internal/platform/respond"
	"github.com/mindvault/mindvault/internal/platform/validate"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// Handler implements the HTTP layer for the file domain.
type Handler struct {
	fileService *Service
}

// NewHandler constructs a new file [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{fileService: service}
}

// Routes returns a [chi.Router] configured with the file domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/presigned-url", handler.requestUpload)
	router.Post("/{id}/confirm", handler.confirmUpload)
	router.Get("/", handler.list)
	router.Get("/usage", handler.usage)
	router.Get("/{id}", handler.get)
	router.Get("/{id}/download", handler.download)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Payloads

type presignedURLRequest struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

type downloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// # Endpoints

/*
POST /api/v1/files/presigned-url.

Description: Reserves an upload slot and returns a presigned PUT URL. The
record starts in uploading status until confirmed.

Request:
  - Body: presignedURLRequest (all fields required)

Response:
  - 201: UploadGrant
  - 400: ErrInvalidJSON: Bad payload, size, or MIME type
*/
func (handler *Handler) requestUpload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input presignedURLRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("filename", input.Filename).
		MaxLen("filename", input.Filename, 255).
		Required("mimeType", input.MimeType)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	grant, err := handler.fileService.RequestUpload(request.Context(), userID, input.Filename, input.MimeType, input.Size)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, grant)
}

/*
POST /api/v1/files/{id}/confirm.

Description: Marks an upload as complete after the client PUT the bytes.

Response:
  - 200: File: Record now in uploaded status
  - 403: File belongs to another user
  - 404: File not found
  - 422: File is not in uploading status
*/
func (handler *Handler) confirmUpload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.fileService.ConfirmUpload(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
GET /api/v1/files.

Description: Lists the authenticated user's file records, newest first.
Supports type and status query filters plus standard pagination.

Response:
  - 200: []File with pagination metadata
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
	}

	validator := &validate.Validator{}
	validator.Custom("status", filters.Status != "" && !filters.Status.Valid(), "Unknown file status")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	records, total, err := handler.fileService.List(request.Context(), userID, filters, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/files/usage.

Description: Reports the user's storage consumption against quota.

Response:
  - 200: Usage
*/
func (handler *Handler) usage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	usage, err := handler.fileService.StorageUsage(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, usage)
}

/*
GET /api/v1/files/{id}.

Response:
  - 200: File
  - 403: File belongs to another user
  - 404: File not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.fileService.Get(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
GET /api/v1/files/{id}/download.

Description: Returns a fresh presigned GET URL for the stored object.

Response:
  - 200: downloadURLResponse
  - 403: File belongs to another user
  - 404: File not found
  - 422: Upload has not completed
*/
func (handler *Handler) download(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	url, expiresIn, err := handler.fileService.DownloadURL(request.Context(), requestutil.ID(request, "id"), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, downloadURLResponse{DownloadURL: url, ExpiresIn: expiresIn})
}

/*
DELETE /api/v1/files/{id}.

Description: Soft-deletes the record and removes the stored object.

Response:
  - 204: Deleted
  - 403: File belongs to another user
  - 404: File not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.fileService.Delete(request.Context(), requestutil.ID(request, "id"), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
