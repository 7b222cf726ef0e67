// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
This file implements the core identity and access management (IAM) use cases.

It handles everything from user registration and secure password hashing to
session lifecycle management via paired JWTs: a short-lived access token and a
long-lived refresh token whose raw value is tracked in PostgreSQL.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Refresh, Logout).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and Redis
    (volatile reset/verification tokens).
  - Security: Bcrypt hashing and HS256-signed JWTs with independent secrets
    per token family.
*/

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/platform/sec"
	"github.com/mindvault/mindvault/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating and verifying JWTs.
// [*sec.TokenService] is the production implementation.
type TokenProvider interface {
	// Generate creates a signed JWT of the given purpose for a user.
	Generate(purpose sec.TokenPurpose, userID, email, role string) (string, error)

	// Verify checks signature, expiry, and the embedded "type" claim.
	Verify(purpose sec.TokenPurpose, tokenString string) (*sec.AuthClaims, error)

	// AccessTTL reports the configured access token lifetime.
	AccessTTL() time.Duration

	// RefreshTTL reports the configured refresh token lifetime.
	RefreshTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or token rotation logic must be reviewed by the security team.
type Service struct {
	userRepository              UserRepository
	sessionRepository           SessionRepository
	resetTokenRepository        ResetTokenRepository
	verificationTokenRepository VerificationTokenRepository
	tokenProvider               TokenProvider
	logger                      *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	resetRepo ResetTokenRepository,
	verifyRepo VerificationTokenRepository,
	tokenProv TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:              userRepo,
		sessionRepository:           sessionRepo,
		resetTokenRepository:        resetRepo,
		verificationTokenRepository: verifyRepo,
		tokenProvider:               tokenProv,
		logger:                      logger,
	}
}

// TokenBundle is the triple handed to the client after any successful
// authentication: a fresh access token, a fresh refresh token, and the
// access token's lifetime in seconds.
type TokenBundle struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *User
}

// issueTokens mints a new access/refresh pair for the user and persists the
// refresh token as a session row. Every successful Register, Login, and
// Refresh funnels through here so a refresh token can never exist without a
// matching session.
func (service *Service) issueTokens(context context.Context, user *User, userAgent, ipAddress string) (*TokenBundle, error) {
	accessToken, err := service.tokenProvider.Generate(sec.PurposeAccess, user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokenProvider.Generate(sec.PurposeRefresh, user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	session := &Session{
		ID:           uuidv7.New(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    userAgent,
		IPAddress:    ipAddress,
		ExpiresAt:    time.Now().Add(service.tokenProvider.RefreshTTL()),
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &TokenBundle{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(service.tokenProvider.AccessTTL().Seconds()),
		User:         user,
	}, nil
}

// normalizeEmail canonicalizes an address so lookups and the LOWER(email)
// unique index agree.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email     string
	Name      string
	Password  string
	UserAgent string
	IPAddress string
}

/*
Register validates, hashes, and persists a brand new user account, then logs
the account in by issuing its first token pair.

Description: Deep-enrollment of a new member. The up-front email lookup gives
a friendly Conflict early; the unique index on email closes the race between
lookup and insert, and the repository maps that violation to the same Conflict.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *TokenBundle: First session credentials for the new account
  - error: Conflict (if email exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*TokenBundle, error) {
	email := normalizeEmail(input.Email)

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.userRepository.FindByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict("User with this email already exists")
	}
	if !apperr.IsAppError(err) {
		return nil, apperr.Internal(err)
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:            uuidv7.New(),
		Email:         email,
		Name:          input.Name,
		PasswordHash:  hashedPassword,
		Role:          sec.RoleUser,
		Status:        StatusActive,
		EmailVerified: false,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if appErr := apperr.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Generate and store a verification token in Redis as an async-ready side effect
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		_ = service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL)
	}

	bundle, err := service.issueTokens(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	// Registration is the account's first login. Best effort, like in Login.
	_ = service.userRepository.TouchLastLogin(context, user.ID)

	return bundle, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity with a constant-time password comparison, then
checks the account lifecycle state. The credential check runs BEFORE the
status check so a suspended account cannot be probed with wrong passwords.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenBundle: Transport-ready session credentials
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenBundle, error) {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(input.Email))

	// A missing user yields the same generic message as a bad password to
	// prevent account enumeration.
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, apperr.Internal(err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	if !user.IsActive() {
		return nil, apperr.Unauthorized("User account is not active")
	}

	bundle, err := service.issueTokens(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	// Stamped only once the session exists; a failed timestamp must not
	// block the login.
	_ = service.userRepository.TouchLastLogin(context, user.ID)

	return bundle, nil
}

// # Session Management

/*
Refresh implements the refresh token rotation mechanism.

Description: Verifies the presented refresh JWT, consumes the matching session
with a conditional delete, and issues a fresh rotated pair. The conditional
delete is the concurrency arbiter: when several requests race with the same
token, exactly one removes the row and wins; the rest observe removed=false
and are rejected, so a stolen-and-replayed token dies on first reuse.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *TokenBundle: New session credentials
  - error: Unauthorized with a reason-specific message
*/
func (service *Service) Refresh(context context.Context, refreshToken, userAgent, ipAddress string) (*TokenBundle, error) {

	// 1. Cryptographic verification against the refresh secret
	claims, err := service.tokenProvider.Verify(sec.PurposeRefresh, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, sec.ErrTokenExpired):
			return nil, apperr.Unauthorized("Refresh token expired")
		case errors.Is(err, sec.ErrTokenType):
			return nil, apperr.Unauthorized("Invalid token type")
		default:
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
	}

	// 2. The token must still be tracked by a live session. A valid signature
	// alone is not enough: logout and prior rotations remove the row.
	session, err := service.sessionRepository.FindByToken(context, refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	// 3. Server-side expiry is authoritative even if the JWT exp has drift
	if session.Expired(time.Now()) {
		_, _ = service.sessionRepository.DeleteByToken(context, refreshToken)
		return nil, apperr.Unauthorized("Refresh token expired")
	}

	// 4. The account behind the session must still be usable. Infrastructure
	// failures are coerced to the same client-safe 401, so keep the cause
	// in the server log.
	user, err := service.userRepository.FindByID(context, claims.UserID())
	if err != nil {
		if !apperr.IsAppError(err) {
			service.logger.Error("auth_refresh_user_lookup_failed",
				slog.String("user_id", claims.UserID()),
				slog.Any("error", err),
			)
		}
		return nil, apperr.Unauthorized("User not found or inactive")
	}
	if !user.IsActive() {
		return nil, apperr.Unauthorized("User not found or inactive")
	}

	// 5. Rotation: consume the old session exactly once
	removed, err := service.sessionRepository.DeleteByToken(context, refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	if !removed {
		// A concurrent refresh consumed the token first
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	return service.issueTokens(context, user, userAgent, ipAddress)
}

/*
Logout removes the session tracking the given refresh token.

Description: Idempotent by design. An unknown or already-consumed token still
reports success, so repeated logouts and logouts after expiry sweep are
indistinguishable from the first.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Persistence failures only
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if _, err := service.sessionRepository.DeleteByToken(context, refreshToken); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

/*
LogoutAll removes every session belonging to the user, forcing re-login on
all devices.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (service *Service) LogoutAll(context context.Context, userID string) error {
	if err := service.sessionRepository.DeleteByUserID(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_all_failed: %w", err)
	}
	return nil
}

/*
SessionCount reports how many live sessions the user currently holds.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int64: Number of live sessions
  - error: Retrieval failures
*/
func (service *Service) SessionCount(context context.Context, userID string) (int64, error) {
	count, err := service.sessionRepository.CountByUserID(context, userID)
	if err != nil {
		return 0, fmt.Errorf("auth_service_session_count_failed: %w", err)
	}
	return count, nil
}

/*
SweepExpiredSessions removes sessions past their server-side expiry.

Description: Called periodically by the background janitor. Returns the number
of rows removed for logging.

Parameters:
  - context: context.Context

Returns:
  - int64: Sessions removed
  - error: Cleanup failures
*/
func (service *Service) SweepExpiredSessions(context context.Context) (int64, error) {
	count, err := service.sessionRepository.DeleteExpired(context)
	if err != nil {
		return 0, fmt.Errorf("auth_service_sweep_failed: %w", err)
	}
	return count, nil
}

// VerifyAccessToken validates a bearer token and returns its claims.
// Used by the HTTP middleware on every authenticated request.
func (service *Service) VerifyAccessToken(tokenString string) (*sec.AuthClaims, error) {
	claims, err := service.tokenProvider.Verify(sec.PurposeAccess, tokenString)
	if err != nil {
		if errors.Is(err, sec.ErrTokenType) {
			return nil, apperr.Unauthorized("Invalid token type")
		}
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	return claims, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Reset token (empty when the email is unknown)
  - error: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(email))
	if err != nil {
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and removes all active sessions for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: remove EVERY active session for this user
	_ = service.sessionRepository.DeleteByUserID(context, userID)
	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password, rotates the hash, and removes all
sessions so every device (including this one) must log in again.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	_ = service.sessionRepository.DeleteByUserID(context, userID)

	return nil
}

/*
VerifyEmail confirms a user's email address using a secure token, records
the verified flag, and activates an inactive account.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	if err := service.userRepository.MarkEmailVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Verification also lifts a pending account into active.
	if err := service.userRepository.UpdateStatus(context, userID, StatusActive); err != nil {
		return fmt.Errorf("auth_service_verify_email_activate_failed: %w", err)
	}

	_ = service.verificationTokenRepository.Delete(context, token)

	return nil
}
