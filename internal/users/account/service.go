// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/platform/sec"
	"github.com/mindvault/mindvault/internal/users/auth"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// # Service Layer

// Service orchestrates business logic for user accounts.
//
// It ensures that profile updates and administrative lifecycle transitions
// follow established business constraints.
type Service struct {
	accountRepository AccountRepository
	sessionRevoker    SessionRevoker
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(
	accountRepo AccountRepository,
	sessionRevoker SessionRevoker,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessionRevoker:    sessionRevoker,
		logger:            logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of user profile fields.
// Nil pointers mean "leave unchanged".
type UpdateProfileInput struct {
	Name      *string
	Bio       *string
	AvatarURL *string
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}

// # Administration

/*
ListUsers returns a page of accounts with the total count, admin-only.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []auth.User: Page of accounts
  - int: Total count
  - error: Retrieval failures
*/
func (service *Service) ListUsers(context context.Context, params pagination.Params) ([]auth.User, int, error) {
	users, total, err := service.accountRepository.List(context, params)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return users, total, nil
}

/*
SetStatus transitions an account's lifecycle state.

Description: Suspending or deactivating an account immediately removes all of
its refresh sessions, so outstanding access tokens are the only remaining
window (bounded by their short TTL).

Parameters:
  - context: context.Context
  - userID: string
  - status: auth.UserStatus

Returns:
  - error: Validation or execution failures
*/
func (service *Service) SetStatus(context context.Context, userID string, status auth.UserStatus) error {
	switch status {
	case auth.StatusActive, auth.StatusInactive, auth.StatusSuspended:
	default:
		return apperr.ValidationError("Unknown account status")
	}

	if _, err := service.accountRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.accountRepository.UpdateStatus(context, userID, status); err != nil {
		return fmt.Errorf("account_service_set_status_failed: %w", err)
	}

	if status != auth.StatusActive {
		_ = service.sessionRevoker.DeleteByUserID(context, userID)
	}

	service.logger.Warn("user_status_changed",
		slog.String("user_id", userID),
		slog.String("status", string(status)),
	)

	return nil
}

/*
SetRole changes an account's authorization level.

Parameters:
  - context: context.Context
  - userID: string
  - role: sec.UserRole

Returns:
  - error: Validation or execution failures
*/
func (service *Service) SetRole(context context.Context, userID string, role sec.UserRole) error {
	if !role.Valid() {
		return apperr.ValidationError("Unknown role")
	}

	if _, err := service.accountRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.accountRepository.UpdateRole(context, userID, string(role)); err != nil {
		return fmt.Errorf("account_service_set_role_failed: %w", err)
	}

	service.logger.Warn("user_role_changed",
		slog.String("user_id", userID),
		slog.String("role", string(role)),
	)

	return nil
}

/*
StatusBreakdown reports the number of accounts per lifecycle state.

Parameters:
  - context: context.Context

Returns:
  - map[string]int64: Count keyed by status
  - error: Retrieval failures
*/
func (service *Service) StatusBreakdown(context context.Context) (map[string]int64, error) {
	counts, err := service.accountRepository.CountByStatus(context)
	if err != nil {
		return nil, fmt.Errorf("account_service_status_breakdown_failed: %w", err)
	}
	return counts, nil
}
