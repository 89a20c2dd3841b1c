// Package config provides configuration for the control room server.
//
// Process settings are loaded from environment variables with defaults.
// The control room file (services, workspaces, UI and git settings) is
// discovered on disk, decoded by extension and optionally watched for
// changes.
//
// Configuration Sections:
//   - Server: HTTP listen address
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting
//   - ControlRoom: Control room file location and watching
//   - Supervisor: Log capacity and stop timeouts
//   - Runner: Cancel timeout and output drain window
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	store, err := config.NewStore(cfg.ControlRoom.Path, log)
//	crc, err := store.Reload()
//
// Environment Variables:
//   - PORT, HOST, LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - CONTROLROOM_CONFIG_PATH, CONTROLROOM_WATCH
//   - SERVICE_LOG_CAPACITY, SERVICE_STOP_TIMEOUT, STOP_COMMAND_TIMEOUT
//   - RUN_CANCEL_TIMEOUT, RUN_OUTPUT_DRAIN
package config
