// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random string built from byteLength
// bytes of OS entropy. Used for password-reset and email-verification tokens,
// which are opaque lookups rather than signed JWTs.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
