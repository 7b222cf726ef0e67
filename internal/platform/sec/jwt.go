// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindvault/mindvault/pkg/uuidv7"
)

// TokenPurpose discriminates the two token families issued by the API.
//
// The purpose is embedded in the signed payload as the "type" claim, so an
// access token can never be replayed against the refresh endpoint (and vice
// versa) even though both are HS256 JWTs.
type TokenPurpose string

const (
	// Short-lived bearer token sent on every API request
	PurposeAccess TokenPurpose = "access"

	// Long-lived token exchanged exactly once for a new pair
	PurposeRefresh TokenPurpose = "refresh"
)

// # Sentinel Errors

var (
	// ErrInvalidToken is returned when a token fails signature or structural checks.
	ErrInvalidToken = errors.New("sec: invalid token")

	// ErrTokenExpired is returned when a token is well-formed but past its expiry.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenType is returned when the "type" claim does not match the
	// expected purpose (e.g. an access token presented as a refresh token).
	ErrTokenType = errors.New("sec: invalid token type")
)

// AuthClaims represents the payload embedded inside a MindVault JWT.
//
// # Why custom claims?
//
// By embedding the Email and Role directly inside the JWT, the
// [middleware.Authenticate] can reconstruct the active user context WITHOUT
// querying the database on every single API request. This provides massive
// read-scalability.
type AuthClaims struct {
	jwt.RegisteredClaims

	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"type"`
}

// UserID returns the subject claim, which carries the account identifier.
func (c *AuthClaims) UserID() string { return c.Subject }

// TokenService handles generation and verification of JWT tokens using HS256.
//
// Access and refresh tokens are signed with INDEPENDENT secrets. Rotating one
// secret invalidates only that token family, which keeps an access-secret leak
// from compromising long-lived refresh sessions.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService creates a new TokenService.
// Both secrets must be non-empty; there are no built-in defaults because a
// guessable signing key defeats the entire auth scheme.
func NewTokenService(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if accessSecret == "" {
		return nil, errors.New("sec: access token secret must not be empty")
	}
	if refreshSecret == "" {
		return nil, errors.New("sec: refresh token secret must not be empty")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL returns the configured lifetime of access tokens.
func (service *TokenService) AccessTTL() time.Duration { return service.accessTTL }

// RefreshTTL returns the configured lifetime of refresh tokens.
func (service *TokenService) RefreshTTL() time.Duration { return service.refreshTTL }

// Generate creates a signed JWT of the given purpose for a user.
//
// Every token carries a fresh jti. Timestamps are second-resolution, so two
// tokens minted within the same second would otherwise be byte-identical,
// and refresh rotation must always produce a distinct token.
func (service *TokenService) Generate(purpose TokenPurpose, userID, email, role string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuidv7.New(),
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl(purpose))),
		},
		Email:     email,
		Role:      role,
		TokenType: string(purpose),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret(purpose))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign %s token: %w", purpose, err)
	}

	return signedToken, nil
}

// Verify checks the signature and validity of a JWT string against the secret
// of the given purpose, then enforces that the embedded "type" claim matches.
//
// Returns:
//   - [ErrTokenExpired] when the token is past its expiry.
//   - [ErrTokenType] when the "type" claim does not match purpose.
//   - [ErrInvalidToken] for every other failure.
func (service *TokenService) Verify(purpose TokenPurpose, tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret(purpose), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != string(purpose) {
		return nil, ErrTokenType
	}

	return claims, nil
}

func (service *TokenService) secret(purpose TokenPurpose) []byte {
	if purpose == PurposeRefresh {
		return service.refreshSecret
	}
	return service.accessSecret
}

func (service *TokenService) ttl(purpose TokenPurpose) time.Duration {
	if purpose == PurposeRefresh {
		return service.refreshTTL
	}
	return service.accessTTL
}
