// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package auth_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/platform/sec"
	"github.com/mindvault/mindvault/internal/users/auth"
)

// # In-Memory Fakes

type fakeUserRepository struct {
	byID    map[string]*auth.User
	byEmail map[string]*auth.User

	touched     []string
	verified    []string
	createErr   error
	findByIDErr error
	statusSets  map[string]auth.UserStatus
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		byID:       map[string]*auth.User{},
		byEmail:    map[string]*auth.User{},
		statusSets: map[string]auth.UserStatus{},
	}
}

func (r *fakeUserRepository) add(user *auth.User) {
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
}

func (r *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if r.findByIDErr != nil {
		return nil, r.findByIDErr
	}
	user, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func (r *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func (r *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.add(user)
	return nil
}

func (r *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := r.byID[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	user.PasswordHash = newHash
	return nil
}

func (r *fakeUserRepository) UpdateStatus(_ context.Context, userID string, status auth.UserStatus) error {
	r.statusSets[userID] = status
	if user, ok := r.byID[userID]; ok {
		user.Status = status
	}
	return nil
}

func (r *fakeUserRepository) MarkEmailVerified(_ context.Context, userID string) error {
	r.verified = append(r.verified, userID)
	if user, ok := r.byID[userID]; ok {
		user.EmailVerified = true
	}
	return nil
}

func (r *fakeUserRepository) TouchLastLogin(_ context.Context, userID string) error {
	r.touched = append(r.touched, userID)
	return nil
}

type fakeSessionRepository struct {
	byToken map[string]*auth.Session
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{byToken: map[string]*auth.Session{}}
}

func (r *fakeSessionRepository) Create(_ context.Context, session *auth.Session) error {
	r.byToken[session.RefreshToken] = session
	return nil
}

func (r *fakeSessionRepository) FindByToken(_ context.Context, refreshToken string) (*auth.Session, error) {
	session, ok := r.byToken[refreshToken]
	if !ok {
		return nil, apperr.NotFound("Session not found")
	}
	return session, nil
}

func (r *fakeSessionRepository) DeleteByToken(_ context.Context, refreshToken string) (bool, error) {
	if _, ok := r.byToken[refreshToken]; !ok {
		return false, nil
	}
	delete(r.byToken, refreshToken)
	return true, nil
}

func (r *fakeSessionRepository) DeleteByUserID(_ context.Context, userID string) error {
	for token, session := range r.byToken {
		if session.UserID == userID {
			delete(r.byToken, token)
		}
	}
	return nil
}

func (r *fakeSessionRepository) DeleteExpired(_ context.Context) (int64, error) {
	var removed int64
	now := time.Now()
	for token, session := range r.byToken {
		if session.Expired(now) {
			delete(r.byToken, token)
			removed++
		}
	}
	return removed, nil
}

func (r *fakeSessionRepository) CountByUserID(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, session := range r.byToken {
		if session.UserID == userID {
			count++
		}
	}
	return count, nil
}

// fakeTokenStore serves both the reset and verification token contracts.
type fakeTokenStore struct {
	values map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{values: map[string]string{}}
}

func (s *fakeTokenStore) Set(_ context.Context, token, userID string, _ time.Duration) error {
	s.values[token] = userID
	return nil
}

func (s *fakeTokenStore) Get(_ context.Context, token string) (string, error) {
	userID, ok := s.values[token]
	if !ok {
		return "", apperr.Unauthorized("Invalid or expired token")
	}
	return userID, nil
}

func (s *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(s.values, token)
	return nil
}

// # Harness

type authFixture struct {
	service  *auth.Service
	users    *fakeUserRepository
	sessions *fakeSessionRepository
	resets   *fakeTokenStore
	verifies *fakeTokenStore
	tokens   *sec.TokenService
	logs     *bytes.Buffer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tokens, err := sec.NewTokenService("test-access", "test-refresh", "mindvault-test", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	fixture := &authFixture{
		users:    newFakeUserRepository(),
		sessions: newFakeSessionRepository(),
		resets:   newFakeTokenStore(),
		verifies: newFakeTokenStore(),
		tokens:   tokens,
		logs:     logs,
	}
	fixture.service = auth.NewService(
		fixture.users,
		fixture.sessions,
		fixture.resets,
		fixture.verifies,
		tokens,
		slog.New(slog.NewTextHandler(logs, nil)),
	)

	return fixture
}

func (f *authFixture) seedUser(t *testing.T, email, password string, status auth.UserStatus) *auth.User {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	user := &auth.User{
		ID:           "user-" + email,
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         sec.RoleUser,
		Status:       status,
	}
	f.users.add(user)

	return user
}

func requireUnauthorized(t *testing.T, err error, message string) {
	t.Helper()

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

// # Registration

func TestService_Register(t *testing.T) {
	fixture := newAuthFixture(t)
	ctx := context.Background()

	bundle, err := fixture.service.Register(ctx, auth.RegisterInput{
		Email:    "alice@mindvault.app",
		Name:     "Alice",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.AccessToken)
	assert.NotEmpty(t, bundle.RefreshToken)
	assert.Equal(t, int64(900), bundle.ExpiresIn)
	assert.Equal(t, "alice@mindvault.app", bundle.User.Email)
	assert.Equal(t, auth.StatusActive, bundle.User.Status)
	assert.False(t, bundle.User.EmailVerified)

	// Registration doubles as the first login
	assert.Contains(t, fixture.users.touched, bundle.User.ID)

	// Password must be stored hashed, never verbatim
	stored := fixture.users.byEmail["alice@mindvault.app"]
	assert.NotEqual(t, "s3cret-password", stored.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("s3cret-password", stored.PasswordHash))

	// The first session is created alongside the account
	count, err := fixture.sessions.CountByUserID(ctx, bundle.User.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// A verification token was parked for the async email flow
	assert.Len(t, fixture.verifies.values, 1)
}

func TestService_Register_NormalizesEmail(t *testing.T) {
	fixture := newAuthFixture(t)

	bundle, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Email:    "  Alice@MindVault.App ",
		Name:     "Alice",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@mindvault.app", bundle.User.Email)

	// The canonical form matches at login regardless of presented casing
	_, err = fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "ALICE@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "alice@mindvault.app", "whatever", auth.StatusActive)

	_, err := fixture.service.Register(context.Background(), auth.RegisterInput{
		Email:    "alice@mindvault.app",
		Name:     "Impostor",
		Password: "another-password",
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Equal(t, "User with this email already exists", appErr.Message)
}

// # Login

func TestService_Login(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)

	bundle, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID, bundle.User.ID)
	assert.Contains(t, fixture.users.touched, user.ID)

	claims, err := fixture.tokens.Verify(sec.PurposeAccess, bundle.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
}

func TestService_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		status   auth.UserStatus
		message  string
	}{
		{"unknown_email", "nobody@mindvault.app", "irrelevant", auth.StatusActive, "Invalid credentials"},
		{"wrong_password", "alice@mindvault.app", "wrong", auth.StatusActive, "Invalid credentials"},
		{"suspended_account", "alice@mindvault.app", "s3cret-password", auth.StatusSuspended, "User account is not active"},
		{"inactive_account", "alice@mindvault.app", "s3cret-password", auth.StatusInactive, "User account is not active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newAuthFixture(t)
			fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", tt.status)

			_, err := fixture.service.Login(context.Background(), auth.LoginInput{
				Email:    tt.email,
				Password: tt.password,
			})
			requireUnauthorized(t, err, tt.message)
		})
	}
}

// TestService_Login_SuspendedWrongPassword pins the check ordering: the
// credential failure must win so a suspended account cannot be probed.
func TestService_Login_SuspendedWrongPassword(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusSuspended)

	_, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "wrong",
	})
	requireUnauthorized(t, err, "Invalid credentials")
}

// # Refresh Rotation

// TestService_Refresh_RotatesWithinSameSecond pins token uniqueness at the
// finest timing: JWT timestamps are second-resolution, so without a per-token
// jti a login and an immediate refresh would mint byte-identical refresh
// tokens and rotation would hand back the token it was meant to consume.
func TestService_Refresh_RotatesWithinSameSecond(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	bundle, err := fixture.service.Login(ctx, auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	// Back-to-back rotations, all inside the same wall-clock second
	previous := bundle.RefreshToken
	for i := 0; i < 3; i++ {
		rotated, err := fixture.service.Refresh(ctx, previous, "agent", "127.0.0.1")
		require.NoError(t, err)
		require.NotEqual(t, previous, rotated.RefreshToken)

		_, err = fixture.service.Refresh(ctx, previous, "agent", "127.0.0.1")
		requireUnauthorized(t, err, "Invalid refresh token")

		previous = rotated.RefreshToken
	}
}

func TestService_Refresh_Rotation(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	bundle, err := fixture.service.Login(ctx, auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	rotated, err := fixture.service.Refresh(ctx, bundle.RefreshToken, "agent", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEqual(t, bundle.RefreshToken, rotated.RefreshToken)

	// The consumed token is dead: replaying it must be rejected
	_, err = fixture.service.Refresh(ctx, bundle.RefreshToken, "agent", "127.0.0.1")
	requireUnauthorized(t, err, "Invalid refresh token")

	// The rotated token still works
	_, err = fixture.service.Refresh(ctx, rotated.RefreshToken, "agent", "127.0.0.1")
	require.NoError(t, err)
}

func TestService_Refresh_InvalidToken(t *testing.T) {
	fixture := newAuthFixture(t)

	_, err := fixture.service.Refresh(context.Background(), "garbage", "agent", "127.0.0.1")
	requireUnauthorized(t, err, "Invalid refresh token")
}

func TestService_Refresh_AccessTokenRejected(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)

	bundle, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	// Access and refresh families use different secrets, so this fails
	// verification outright rather than on the type claim.
	_, err = fixture.service.Refresh(context.Background(), bundle.AccessToken, "agent", "127.0.0.1")
	requireUnauthorized(t, err, "Invalid refresh token")
}

func TestService_Refresh_ServerSideExpiry(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	// A token whose JWT exp is fine but whose tracked session lapsed
	refreshToken, err := fixture.tokens.Generate(sec.PurposeRefresh, user.ID, user.Email, string(user.Role))
	require.NoError(t, err)
	require.NoError(t, fixture.sessions.Create(ctx, &auth.Session{
		ID:           "session-1",
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}))

	_, err = fixture.service.Refresh(ctx, refreshToken, "agent", "127.0.0.1")
	requireUnauthorized(t, err, "Refresh token expired")

	// The lapsed session was removed eagerly
	_, findErr := fixture.sessions.FindByToken(ctx, refreshToken)
	assert.Error(t, findErr)
}

// TestService_Refresh_LookupFailureLogged verifies that an infrastructure
// failure during the account lookup is coerced to the generic 401 for the
// client while the cause lands in the server log.
func TestService_Refresh_LookupFailureLogged(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	bundle, err := fixture.service.Login(ctx, auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	fixture.users.findByIDErr = assert.AnError

	_, err = fixture.service.Refresh(ctx, bundle.RefreshToken, "agent", "127.0.0.1")
	requireUnauthorized(t, err, "User not found or inactive")

	assert.Contains(t, fixture.logs.String(), "auth_refresh_user_lookup_failed")
	assert.Contains(t, fixture.logs.String(), assert.AnError.Error())
}

func TestService_Refresh_SuspendedUser(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	bundle, err := fixture.service.Login(ctx, auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	user.Status = auth.StatusSuspended

	_, err = fixture.service.Refresh(ctx, bundle.RefreshToken, "agent", "127.0.0.1")
	requireUnauthorized(t, err, "User not found or inactive")
}

// # Logout & Sweep

func TestService_Logout_Idempotent(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	bundle, err := fixture.service.Login(ctx, auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	require.NoError(t, fixture.service.Logout(ctx, bundle.RefreshToken))

	// Second logout of the same token is still a success
	require.NoError(t, fixture.service.Logout(ctx, bundle.RefreshToken))

	// The session is gone, so a refresh must fail
	_, err = fixture.service.Refresh(ctx, bundle.RefreshToken, "agent", "127.0.0.1")
	requireUnauthorized(t, err, "Invalid refresh token")
}

func TestService_LogoutAll(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := fixture.service.Login(ctx, auth.LoginInput{
			Email:    "alice@mindvault.app",
			Password: "s3cret-password",
		})
		require.NoError(t, err)
	}

	require.NoError(t, fixture.service.LogoutAll(ctx, user.ID))

	count, err := fixture.sessions.CountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestService_SweepExpiredSessions(t *testing.T) {
	fixture := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, fixture.sessions.Create(ctx, &auth.Session{
		ID: "live", UserID: "u1", RefreshToken: "live-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, fixture.sessions.Create(ctx, &auth.Session{
		ID: "stale", UserID: "u1", RefreshToken: "stale-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	swept, err := fixture.service.SweepExpiredSessions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, swept)

	_, err = fixture.sessions.FindByToken(ctx, "live-token")
	assert.NoError(t, err)
}

func TestService_SessionCount(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	count, err := fixture.service.SessionCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	for i := 0; i < 2; i++ {
		_, err := fixture.service.Login(ctx, auth.LoginInput{
			Email:    "alice@mindvault.app",
			Password: "s3cret-password",
		})
		require.NoError(t, err)
	}

	count, err = fixture.service.SessionCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

// # Session Expiry

// TestSession_Expired_Boundary pins the inclusive boundary: a session whose
// expiresAt equals the probing instant is already dead, matching the <=
// comparison the sweeping DELETE uses.
func TestSession_Expired_Boundary(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		expiresAt time.Time
		expired   bool
	}{
		{"in_the_future", now.Add(time.Minute), false},
		{"exactly_now", now, true},
		{"in_the_past", now.Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &auth.Session{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expired, session.Expired(now))
		})
	}
}

// # Access Token Verification

func TestService_VerifyAccessToken(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)

	accessToken, err := fixture.tokens.Generate(sec.PurposeAccess, user.ID, user.Email, string(user.Role))
	require.NoError(t, err)

	claims, err := fixture.service.VerifyAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())

	_, err = fixture.service.VerifyAccessToken("garbage")
	requireUnauthorized(t, err, "Invalid or expired token")
}

// # Password Recovery

func TestService_PasswordResetFlow(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "old-password", auth.StatusActive)
	ctx := context.Background()

	// An open session that must be revoked by the reset
	_, err := fixture.service.Login(ctx, auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "old-password",
	})
	require.NoError(t, err)

	token, err := fixture.service.RequestPasswordReset(ctx, "alice@mindvault.app")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, fixture.service.ResetPassword(ctx, token, "new-password"))

	// Old password dead, new one live
	assert.False(t, sec.CheckPasswordHash("old-password", user.PasswordHash))
	assert.True(t, sec.CheckPasswordHash("new-password", user.PasswordHash))

	// Every session was revoked
	count, err := fixture.sessions.CountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// The token is single-use
	err = fixture.service.ResetPassword(ctx, token, "again")
	assert.Error(t, err)
}

func TestService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	fixture := newAuthFixture(t)

	// Unknown emails produce no token and no error, preventing enumeration
	token, err := fixture.service.RequestPasswordReset(context.Background(), "nobody@mindvault.app")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestService_ChangePassword(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "old-password", auth.StatusActive)
	ctx := context.Background()

	err := fixture.service.ChangePassword(ctx, user.ID, "wrong", "new-password")
	requireUnauthorized(t, err, "Current password is incorrect")

	require.NoError(t, fixture.service.ChangePassword(ctx, user.ID, "old-password", "new-password"))
	assert.True(t, sec.CheckPasswordHash("new-password", user.PasswordHash))
}

// # Email Verification

func TestService_VerifyEmail(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusInactive)
	ctx := context.Background()

	require.NoError(t, fixture.verifies.Set(ctx, "verify-token", user.ID, time.Hour))

	require.NoError(t, fixture.service.VerifyEmail(ctx, "verify-token"))
	assert.Equal(t, auth.StatusActive, user.Status)
	assert.True(t, user.EmailVerified)
	assert.Contains(t, fixture.users.verified, user.ID)

	// Consumed tokens are removed
	assert.Empty(t, fixture.verifies.values)
}
