// Package main is the entry point for the control room backend.
//
// The server supervises the long-running development services declared in
// the control room file, runs ad-hoc commands on request, and streams their
// output to observers over WebSocket.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - controlroom.config.{json,yaml,yml,toml}, watched for changes
//
// Usage:
//
//	# Serve on the default address (127.0.0.1:7410)
//	controlroom serve
//
//	# Development mode (colored logs)
//	controlroom serve --dev --port 7500
//
//	# Show what the control room file declares
//	controlroom services --config ./controlroom.config.yaml
//
// Signals:
//   - SIGINT, SIGTERM: stop every service and run, then exit
package main
