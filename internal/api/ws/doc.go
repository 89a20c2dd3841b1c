// Package ws streams control room events to WebSocket observers.
//
// Hub is an events.Sink. Every emitted event is encoded once and queued on
// each observer's buffered send channel; an observer that falls behind
// loses events rather than slowing the supervisor down.
//
// Client messages:
//   - {"type": "ping"} answered with {"type": "pong"}
//   - {"type": "subscribe", "kinds": ["service-log", ...]} limits delivery
//     to the listed event kinds; an empty list restores everything
//
// Example Usage:
//
//	hub := ws.NewHub(log, metrics)
//	sink := events.NewMulti(log, hub, metrics)
//	router.GET("/stream", hub.HandleConnection)
package ws
