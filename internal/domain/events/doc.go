// Package events defines the notifications emitted by the supervisor and runner.
//
// A Sink receives every Event. Emit must not block: implementations that
// deliver to slow consumers buffer or drop. Delivery is best-effort and
// unacknowledged.
//
// Features:
//   - Typed constructors for each notification kind
//   - Multi fan-out with panic isolation per sink
//   - Logging sink for lifecycle and backend-error notifications
//   - Recorder sink for inspection in tests and tooling
//
// Example Usage:
//
//	sink := events.NewMulti(log, hub, events.NewLogSink(log))
//	sink.Emit(events.ServiceState(status))
package events
