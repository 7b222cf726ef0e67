// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

// Package metrics defines the Prometheus collectors exposed on /metrics.
//
// Collectors are package-level so any layer can increment them without
// threading a registry through every constructor. RegisterCollectors must be
// called exactly once at startup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests counts finished requests by method, route pattern, and status class.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mindvault", Name: "http_requests_total", Help: "Number of HTTP requests processed."},
		[]string{"method", "path", "status"},
	)

	// AuthLogins counts login attempts by outcome (success, failure).
	AuthLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mindvault", Name: "auth_logins_total", Help: "Number of login attempts by outcome."},
		[]string{"outcome"},
	)

	// AuthRefreshes counts refresh attempts by outcome (success, failure).
	AuthRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mindvault", Name: "auth_refreshes_total", Help: "Number of refresh attempts by outcome."},
		[]string{"outcome"},
	)

	// TTLFallbacks counts malformed token-TTL values that fell back to the default.
	TTLFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mindvault", Name: "token_ttl_fallback_total", Help: "Number of malformed TTL strings replaced by the default."},
		[]string{"variable"},
	)

	// SessionsSwept counts sessions removed by the background janitor.
	SessionsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "mindvault", Name: "sessions_swept_total", Help: "Number of expired sessions deleted by the janitor."},
	)

	// FilesUploaded counts completed file uploads.
	FilesUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "mindvault", Name: "files_uploaded_total", Help: "Number of files uploaded to object storage."},
	)
)

// RegisterCollectors registers every collector on the given registerer.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(AuthLogins)
	reg.MustRegister(AuthRefreshes)
	reg.MustRegister(TTLFallbacks)
	reg.MustRegister(SessionsSwept)
	reg.MustRegister(FilesUploaded)
}
