// Package middleware provides HTTP middleware for the control room API.
//
// Middleware:
//   - CORS: cross-origin access for the local UI, WebSocket upgrades included
//   - RateLimit: per-IP token bucket with idle client eviction
//   - RequestID: X-Request-ID propagation
//   - Logger: structured access log through zap
//   - Recovery: panics become JSON 500 responses
//
// Example Usage:
//
//	router.Use(middleware.Recovery(log), middleware.RequestID(), middleware.Logger(log))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
