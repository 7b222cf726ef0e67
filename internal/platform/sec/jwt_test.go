// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/platform/sec"
)

func newTestTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) *sec.TokenService {
	t.Helper()

	service, err := sec.NewTokenService("access-secret", "refresh-secret", "mindvault-test", accessTTL, refreshTTL)
	require.NoError(t, err)

	return service
}

/*
TestNewTokenService_EmptySecrets ensures the service refuses to start without
signing material for either token family.
*/
func TestNewTokenService_EmptySecrets(t *testing.T) {
	_, err := sec.NewTokenService("", "refresh", "issuer", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = sec.NewTokenService("access", "", "issuer", time.Minute, time.Hour)
	assert.Error(t, err)
}

/*
TestTokenService_RoundTrip generates and verifies both token purposes.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t, 15*time.Minute, 7*24*time.Hour)

	for _, purpose := range []sec.TokenPurpose{sec.PurposeAccess, sec.PurposeRefresh} {
		t.Run(string(purpose), func(t *testing.T) {
			tokenString, err := service.Generate(purpose, "user-123", "alice@mindvault.app", "user")
			require.NoError(t, err)
			require.NotEmpty(t, tokenString)

			claims, err := service.Verify(purpose, tokenString)
			require.NoError(t, err)

			assert.Equal(t, "user-123", claims.UserID())
			assert.Equal(t, "alice@mindvault.app", claims.Email)
			assert.Equal(t, "user", claims.Role)
			assert.Equal(t, string(purpose), claims.TokenType)
			assert.Equal(t, "mindvault-test", claims.Issuer)
		})
	}
}

/*
TestTokenService_UniquePerCall ensures two tokens minted for the same user in
the same second are still distinct. JWT timestamps are second-resolution, so
the per-token jti is the only thing separating them; refresh rotation relies
on the new token never equalling the one it replaces.
*/
func TestTokenService_UniquePerCall(t *testing.T) {
	service := newTestTokenService(t, 15*time.Minute, 7*24*time.Hour)

	first, err := service.Generate(sec.PurposeRefresh, "user-123", "alice@mindvault.app", "user")
	require.NoError(t, err)
	second, err := service.Generate(sec.PurposeRefresh, "user-123", "alice@mindvault.app", "user")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	firstClaims, err := service.Verify(sec.PurposeRefresh, first)
	require.NoError(t, err)
	secondClaims, err := service.Verify(sec.PurposeRefresh, second)
	require.NoError(t, err)

	assert.NotEmpty(t, firstClaims.ID)
	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

/*
TestTokenService_PurposeMismatch ensures an access token can never be
presented at the refresh endpoint and vice versa. The two families are signed
with independent secrets, so the cross-check fails at signature level.
*/
func TestTokenService_PurposeMismatch(t *testing.T) {
	service := newTestTokenService(t, 15*time.Minute, 7*24*time.Hour)

	accessToken, err := service.Generate(sec.PurposeAccess, "user-123", "alice@mindvault.app", "user")
	require.NoError(t, err)

	_, err = service.Verify(sec.PurposeRefresh, accessToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_TypeClaimMismatch covers the defence-in-depth check on the
embedded "type" claim when both families happen to share one secret.
*/
func TestTokenService_TypeClaimMismatch(t *testing.T) {
	service, err := sec.NewTokenService("shared-secret", "shared-secret", "mindvault-test", time.Minute, time.Hour)
	require.NoError(t, err)

	accessToken, err := service.Generate(sec.PurposeAccess, "user-123", "alice@mindvault.app", "user")
	require.NoError(t, err)

	_, err = service.Verify(sec.PurposeRefresh, accessToken)
	assert.ErrorIs(t, err, sec.ErrTokenType)
}

/*
TestTokenService_Expired verifies the dedicated expiry sentinel.
*/
func TestTokenService_Expired(t *testing.T) {
	service := newTestTokenService(t, -time.Minute, -time.Minute)

	tokenString, err := service.Generate(sec.PurposeAccess, "user-123", "alice@mindvault.app", "user")
	require.NoError(t, err)

	_, err = service.Verify(sec.PurposeAccess, tokenString)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenService_Garbage checks that structurally invalid input maps to
ErrInvalidToken.
*/
func TestTokenService_Garbage(t *testing.T) {
	service := newTestTokenService(t, time.Minute, time.Hour)

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.Verify(sec.PurposeAccess, tokenString)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	}
}

/*
TestTokenService_TTLAccessors sanity-checks the configured lifetimes.
*/
func TestTokenService_TTLAccessors(t *testing.T) {
	service := newTestTokenService(t, 15*time.Minute, 7*24*time.Hour)

	assert.Equal(t, 15*time.Minute, service.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, service.RefreshTTL())
}
