// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault/mindvault/internal/platform/middleware"
	requestutil "github.com/mindvault/mindvault/internal/platform/request"
	"github.com/mindvault/mindvault/internal/platform/respond"
)

// Handler implements the HTTP layer for analytics.
type Handler struct {
	analyticsService *Service
}

// NewHandler constructs a new analytics [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{analyticsService: service}
}

// Routes returns a [chi.Router] configured with the analytics endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/stats", handler.stats)

	return router
}

/*
GET /api/v1/analytics/stats.

Description: Aggregates the authenticated user's usage counters across
memories, tasks, chats, and files.

Response:
  - 200: Stats
*/
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.analyticsService.Stats(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}
