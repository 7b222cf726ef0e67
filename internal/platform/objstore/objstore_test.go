// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package objstore_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mindvault/mindvault/internal/platform/objstore"
)

var keyShape = regexp.MustCompile(`^uploads/user-1/\d+-[A-Za-z0-9_-]+-[a-zA-Z0-9._-]+$`)

func TestStorageKey(t *testing.T) {
	key := objstore.StorageKey("user-1", "report.pdf")

	assert.True(t, keyShape.MatchString(key), "unexpected key shape: %s", key)
	assert.Contains(t, key, "report.pdf")
}

func TestStorageKey_SanitizesFilename(t *testing.T) {
	key := objstore.StorageKey("user-1", "my résumé (final)!.pdf")

	// Everything outside [a-zA-Z0-9.-] becomes an underscore
	assert.NotContains(t, key, " ")
	assert.NotContains(t, key, "(")
	assert.NotContains(t, key, "é")
	assert.Contains(t, key, ".pdf")
}

func TestStorageKey_Unique(t *testing.T) {
	first := objstore.StorageKey("user-1", "report.pdf")
	second := objstore.StorageKey("user-1", "report.pdf")

	assert.NotEqual(t, first, second)
}
