// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package sec

import (
	"regexp"
	"strconv"
	"time"
)

// DefaultTokenTTL is the lifetime applied when a TTL string cannot be parsed.
const DefaultTokenTTL = 900 * time.Second

// ttlPattern accepts a positive integer followed by a single unit suffix.
// "d" is accepted because operators routinely write refresh lifetimes in days,
// which [time.ParseDuration] does not support.
var ttlPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseTTL converts a duration string like "15m" or "7d" into a
// [time.Duration].
//
// Supported units are s, m, h and d. Any malformed value (bad unit, missing
// number, empty string) yields [DefaultTokenTTL] and ok=false so the caller
// can log the misconfiguration instead of refusing to boot.
func ParseTTL(raw string) (ttl time.Duration, ok bool) {
	match := ttlPattern.FindStringSubmatch(raw)
	if match == nil {
		return DefaultTokenTTL, false
	}

	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		// Digits that overflow int64 fail here
		return DefaultTokenTTL, false
	}

	switch match[2] {
	case "s":
		return time.Duration(value) * time.Second, true
	case "m":
		return time.Duration(value) * time.Minute, true
	case "h":
		return time.Duration(value) * time.Hour, true
	case "d":
		return time.Duration(value) * 24 * time.Hour, true
	}

	return DefaultTokenTTL, false
}
