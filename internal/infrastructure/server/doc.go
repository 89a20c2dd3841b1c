// Package server assembles the control room and serves it over HTTP.
//
// Server lifecycle:
//  1. Load the control room file and apply its services and workspaces
//  2. Build metrics, the observer hub and the event fan-out
//  3. Create the supervisor and the command runner
//  4. Mount middleware, REST routes, /stream and /metrics
//  5. Serve until the context is cancelled, watching the config file
//  6. Close: stop HTTP, then every service and run concurrently
package server
