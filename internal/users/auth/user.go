// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session) and logic for registration,
login, token rotation, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/mindvault/mindvault/internal/platform/sec"
)

// # Account Status

// UserStatus represents the lifecycle state of an account.
type UserStatus string

const (
	// Account may log in and use the API
	StatusActive UserStatus = "active"

	// Account exists but is disabled (e.g. pending email verification)
	StatusInactive UserStatus = "inactive"

	// Account has been administratively locked out
	StatusSuspended UserStatus = "suspended"
)

// # Domain Entities

// User represents a registered member of the MindVault platform.
type User struct {
	ID            string       `json:"id"`
	Email         string       `json:"email"`
	Name          string       `json:"name"`
	PasswordHash  string       `json:"-"` // Explicitly omitted from JSON for security.
	Role          sec.UserRole `json:"role"`
	Status        UserStatus   `json:"status"`
	EmailVerified bool         `json:"emailVerified"`
	AvatarURL     string       `json:"avatarUrl,omitempty"`
	Bio           string       `json:"bio,omitempty"`
	LastLoginAt   *time.Time   `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// IsActive reports whether the account is allowed to authenticate.
func (u *User) IsActive() bool { return u.Status == StatusActive }

// PublicProfile is the client-facing projection of a [User] embedded in
// token responses. It never carries credential material.
type PublicProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Profile returns the public projection of the user.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

// Session represents an active refresh-token session.
//
// The refresh token string itself is the natural key: rotation is a
// conditional delete on that exact value, so two concurrent refreshes of the
// same token can never both succeed.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	RefreshToken string    `json:"-"` // Never serialized outside the login/refresh response.
	UserAgent    string    `json:"userAgent,omitempty"`
	IPAddress    string    `json:"ipAddress,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its server-side expiry.
// The boundary is inclusive: a session expiring exactly now is already dead,
// matching the <= comparison the store uses when sweeping.
func (s *Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldName            = "name"
	FieldPassword        = "password"
	FieldRefreshToken    = "refreshToken"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldAccessToken     = "accessToken"
	FieldExpiresIn       = "expiresIn"
	FieldUser            = "user"
	FieldMessage         = "message"
)
