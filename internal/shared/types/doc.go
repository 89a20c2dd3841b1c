// Package types provides shared data structures for the control room backend.
//
// This package defines the value types exchanged between the supervisor,
// the command runner, the HTTP/WebSocket API and the configuration loader.
//
// Core Types:
//   - CommandSpec: Executable invocation (program, args, cwd, env)
//   - ServiceDefinition: Named long-running service from configuration
//   - ServiceStatus: Lifecycle snapshot of one service
//   - LogEntry: Classified line of service output
//
// Run Types:
//   - RunRequest, RunStarted: One-off command execution
//   - RunOutput, RunExit: Streamed run notifications
//   - RunInfo: Active run listing
//
// Configuration:
//   - ControlRoomConfig: File-based control room configuration
//   - Workspace: Named working directory used by runs
//
// Example Usage:
//
//	def := types.ServiceDefinition{
//	    ID:    "api",
//	    Name:  "API server",
//	    Start: types.CommandSpec{Program: "go", Args: []string{"run", "./cmd/api"}},
//	}
package types
