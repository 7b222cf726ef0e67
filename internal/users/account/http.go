// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
This file provides the HTTP delivery layer for profile management and user
administration.

# Security

All endpoints require an active authentication session provided by the
RequireAuth middleware; the /users administrative subtree additionally
requires the admin role.
*/

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/platform/middleware"
	requestutil "github.com/mindvault/mindvault/internal/platform/request"
	"github.com/mindvault/mindvault/internal/platform/respond"
	"github.com/mindvault/mindvault/internal/platform/sec"
	"github.com/mindvault/mindvault/internal/platform/validate"
	"github.com/mindvault/mindvault/internal/users/auth"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	// Account Management
	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)

	// Administration
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/users", handler.listUsers)
		r.Get("/users/stats", handler.userStats)
		r.Patch("/users/{id}/status", handler.setStatus)
		r.Patch("/users/{id}/role", handler.setRole)
	})

	return router
}

// # User Profile Endpoints

/*
GET /api/v1/me.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: User: Fully hydrated user profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
}

/*
PATCH /api/v1/me.

Description: Applies partial updates to the authenticated user's profile.
Absent fields are left unchanged.

Request:
  - Body: updateMeRequest (Name, Bio, AvatarURL, all optional)

Response:
  - 200: User: Updated profile
  - 400: ErrInvalidJSON: Bad payload or validation failure
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required(auth.FieldName, *input.Name).MinLen(auth.FieldName, *input.Name, 2).MaxLen(auth.FieldName, *input.Name, 100)
	}
	if input.Bio != nil {
		v.MaxLen("bio", *input.Bio, 500)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Name:      input.Name,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Administration Endpoints

/*
GET /api/v1/users.

Description: Lists accounts with pagination, admin-only.

Response:
  - 200: []User with pagination metadata
  - 403: ErrForbidden: Insufficient permissions
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/users/stats.

Description: Reports the number of accounts per lifecycle state, admin-only.

Response:
  - 200: map[status]count
*/
func (handler *Handler) userStats(writer http.ResponseWriter, request *http.Request) {
	counts, err := handler.accountService.StatusBreakdown(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, counts)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

/*
PATCH /api/v1/users/{id}/status.

Description: Transitions an account between active, inactive, and suspended.
Moving away from active removes all of the account's refresh sessions.

Response:
  - 200: Success
  - 400: Unknown status value
  - 403: Self-targeting
  - 404: User not found
*/
func (handler *Handler) setStatus(writer http.ResponseWriter, request *http.Request) {
	targetID := requestutil.Param(request, "id")

	// An admin locking their own account would strand the tenancy
	if callerID, err := requestutil.RequiredUserID(request); err == nil && callerID == targetID {
		respond.Error(writer, request, apperr.Forbidden("Cannot change the status of your own account"))
		return
	}

	var input setStatusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.accountService.SetStatus(request.Context(), targetID, auth.UserStatus(input.Status)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{auth.FieldMessage: "Status updated"})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

/*
PATCH /api/v1/users/{id}/role.

Description: Changes an account's authorization level.

Response:
  - 200: Success
  - 400: Unknown role value
  - 404: User not found
*/
func (handler *Handler) setRole(writer http.ResponseWriter, request *http.Request) {
	targetID := requestutil.Param(request, "id")

	var input setRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.accountService.SetRole(request.Context(), targetID, sec.UserRole(input.Role)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{auth.FieldMessage: "Role updated"})
}
