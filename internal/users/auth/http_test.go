// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/platform/ctxutil"
	"github.com/mindvault/mindvault/internal/platform/sec"
	"github.com/mindvault/mindvault/internal/users/auth"
)

// TestHandler_Logout_RequiresAuth pins logout behind the bearer guard:
// terminating a session is an authenticated act, so a request without
// resolved claims must be rejected before the body is even read.
func TestHandler_Logout_RequiresAuth(t *testing.T) {
	fixture := newAuthFixture(t)
	router := auth.NewHandler(fixture.service).Routes()

	request := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(`{"refreshToken":"whatever"}`))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandler_Logout_Authenticated(t *testing.T) {
	fixture := newAuthFixture(t)
	user := fixture.seedUser(t, "alice@mindvault.app", "s3cret-password", auth.StatusActive)
	ctx := context.Background()

	bundle, err := fixture.service.Login(ctx, auth.LoginInput{
		Email:    "alice@mindvault.app",
		Password: "s3cret-password",
	})
	require.NoError(t, err)

	claims := &sec.AuthClaims{Email: user.Email, Role: string(user.Role)}
	claims.Subject = user.ID

	router := auth.NewHandler(fixture.service).Routes()
	request := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(`{"refreshToken":"`+bundle.RefreshToken+`"}`))
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	// The tracked session is gone, so the token cannot be rotated anymore
	_, err = fixture.service.Refresh(ctx, bundle.RefreshToken, "agent", "127.0.0.1")
	requireUnauthorized(t, err, "Invalid refresh token")
}
