package events

import (
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// Kind names a notification
type Kind string

const (
	KindServiceLog   Kind = "service-log"
	KindServiceState Kind = "service-state"
	KindRunOutput    Kind = "run-output"
	KindRunExit      Kind = "run-exit"
	KindBackendError Kind = "backend-error"
)

// Event is one notification with its kind-specific payload
type Event struct {
	Kind    Kind `json:"type"`
	Payload any  `json:"payload"`
}

// Sink consumes events. Emit must return promptly.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(Event)

// Emit calls f
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) {})

func ServiceLog(entry types.LogEntry) Event {
	return Event{Kind: KindServiceLog, Payload: entry}
}

func ServiceState(status types.ServiceStatus) Event {
	return Event{Kind: KindServiceState, Payload: status}
}

func RunOutput(output types.RunOutput) Event {
	return Event{Kind: KindRunOutput, Payload: output}
}

func RunExit(exit types.RunExit) Event {
	return Event{Kind: KindRunExit, Payload: exit}
}

// BackendError reports a failure detached from any caller
func BackendError(scope, message string, correlationID *string) Event {
	return Event{Kind: KindBackendError, Payload: types.BackendError{
		Scope:         scope,
		Message:       message,
		CorrelationID: correlationID,
	}}
}
