// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mindvault/mindvault/internal/platform/sec"
)

/*
TestParseTTL verifies the compact duration syntax used for token lifetimes.
*/
func TestParseTTL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Duration
		ok   bool
	}{
		{"seconds", "45s", 45 * time.Second, true},
		{"minutes", "15m", 15 * time.Minute, true},
		{"hours", "2h", 2 * time.Hour, true},
		{"days", "7d", 168 * time.Hour, true},
		{"single_day", "1d", 24 * time.Hour, true},
		{"empty", "", sec.DefaultTokenTTL, false},
		{"missing_unit", "900", sec.DefaultTokenTTL, false},
		{"unknown_unit", "10w", sec.DefaultTokenTTL, false},
		{"negative", "-5m", sec.DefaultTokenTTL, false},
		{"go_duration_syntax", "1h30m", sec.DefaultTokenTTL, false},
		{"overflow", "99999999999999999999s", sec.DefaultTokenTTL, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sec.ParseTTL(tt.raw)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
