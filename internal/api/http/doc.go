// Package http exposes the control room operations as a REST API.
//
// Errors are returned as {"error": message, "kind": kind} with the status
// derived from the error kind:
//   - not_found: 404
//   - invalid_command, invalid_request: 400
//   - spawn_failed: 502
//   - io_failure: 500
//   - invalid_config: 422
package http
