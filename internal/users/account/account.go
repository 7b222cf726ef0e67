// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package account handles user profile management and administration.

It provides functionalities for users to view and update their private
identity data, and for administrators to list accounts and transition their
lifecycle state.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Security: Role transitions and suspensions are admin-only operations,
    enforced in the HTTP layer via [middleware.RequireRole].
*/
package account

import (
	"context"

	"github.com/mindvault/mindvault/internal/users/auth"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for user accounts.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update modifies the mutable profile fields of an existing user.

		Parameters:
		  - context: context.Context
		  - user: *auth.User (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, user *auth.User) error

	/*
		List returns a page of accounts ordered by creation time.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []auth.User: Page of accounts
		  - int: Total account count
		  - error: Retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]auth.User, int, error)

	/*
		UpdateStatus transitions the lifecycle state of an account.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - status: auth.UserStatus

		Returns:
		  - error: Execution failures
	*/
	UpdateStatus(context context.Context, userID string, status auth.UserStatus) error

	/*
		UpdateRole changes the authorization level of an account.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: string

		Returns:
		  - error: Execution failures
	*/
	UpdateRole(context context.Context, userID string, role string) error

	/*
		CountByStatus groups accounts by lifecycle state.

		Parameters:
		  - context: context.Context

		Returns:
		  - map[string]int64: Count per status value
		  - error: Retrieval failures
	*/
	CountByStatus(context context.Context) (map[string]int64, error)
}

// SessionRevoker is the slice of the auth session store the account service
// needs: suspending or deleting an account must kill its sessions.
type SessionRevoker interface {
	DeleteByUserID(context context.Context, userID string) error
}
