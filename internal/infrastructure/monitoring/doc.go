/*
Package monitoring provides Prometheus metrics for the control room.

# Overview

Metrics are registered on a registry owned by each Metrics value, so
several servers (or tests) can coexist in one process. Metrics is also an
events.Sink: service transitions, log lines, run exits and backend errors
are counted as they are emitted.

# Features

- HTTP request metrics (count, latency) by route template
- Service lifecycle transitions and up/down gauge
- Captured log lines by stream and level
- Run output lines, exits by outcome and active runs
- Backend errors by scope
- WebSocket observers and dropped events
- Go runtime, process and uptime metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	sink := events.NewMulti(log, hub, metrics)
*/
package monitoring
