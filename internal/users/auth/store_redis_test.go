// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/users/auth"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

/*
TestRedisResetTokenRepository covers the volatile reset token lifecycle
against a real Redis protocol implementation.
*/
func TestRedisResetTokenRepository(t *testing.T) {
	server, client := newTestRedis(t)
	repository := auth.NewResetTokenRepository(client)
	ctx := context.Background()

	require.NoError(t, repository.Set(ctx, "reset-abc", "user-123", time.Hour))

	// The key carries the namespaced prefix and the TTL
	assert.True(t, server.Exists("auth:reset_token:reset-abc"))
	assert.InDelta(t, time.Hour, server.TTL("auth:reset_token:reset-abc"), float64(time.Second))

	userID, err := repository.Get(ctx, "reset-abc")
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	require.NoError(t, repository.Delete(ctx, "reset-abc"))

	_, err = repository.Get(ctx, "reset-abc")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

/*
TestRedisResetTokenRepository_Expiry verifies that tokens vanish once their
TTL elapses.
*/
func TestRedisResetTokenRepository_Expiry(t *testing.T) {
	server, client := newTestRedis(t)
	repository := auth.NewResetTokenRepository(client)
	ctx := context.Background()

	require.NoError(t, repository.Set(ctx, "reset-abc", "user-123", time.Minute))

	server.FastForward(2 * time.Minute)

	_, err := repository.Get(ctx, "reset-abc")
	assert.NotNil(t, apperr.As(err))
}

/*
TestRedisVerificationTokenRepository mirrors the reset flow for the email
verification namespace, including prefix isolation between the two.
*/
func TestRedisVerificationTokenRepository(t *testing.T) {
	server, client := newTestRedis(t)
	verifications := auth.NewVerificationTokenRepository(client)
	resets := auth.NewResetTokenRepository(client)
	ctx := context.Background()

	require.NoError(t, verifications.Set(ctx, "token-1", "user-123", 24*time.Hour))
	assert.True(t, server.Exists("auth:verify_token:token-1"))

	// Same token string in the other namespace must not collide
	_, err := resets.Get(ctx, "token-1")
	assert.NotNil(t, apperr.As(err))

	userID, err := verifications.Get(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	require.NoError(t, verifications.Delete(ctx, "token-1"))
	_, err = verifications.Get(ctx, "token-1")
	assert.NotNil(t, apperr.As(err))
}
