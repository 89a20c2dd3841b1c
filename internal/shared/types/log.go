package types

// Output stream names
const (
	StreamStdout = "stdout"
	StreamStderr = "stderr"
)

// Level is the severity assigned to a line of output
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
)

// LogEntry is one classified line of service output
type LogEntry struct {
	ServiceID     string  `json:"serviceId"`
	Stream        string  `json:"stream"`
	TimestampMs   int64   `json:"ts"`
	Level         Level   `json:"level"`
	Line          string  `json:"line"`
	CorrelationID *string `json:"correlationId,omitempty"`
}

// RunOutput is one line of run output
type RunOutput struct {
	RunID         string  `json:"runId"`
	Stream        string  `json:"stream"`
	TimestampMs   int64   `json:"ts"`
	Line          string  `json:"line"`
	CorrelationID *string `json:"correlationId,omitempty"`
}

// RunExit reports the termination of a run
type RunExit struct {
	RunID         string  `json:"runId"`
	Code          *int    `json:"code"`
	Signal        *string `json:"signal"`
	CorrelationID *string `json:"correlationId,omitempty"`
}

// BackendError reports a failure that happened outside a caller's request
type BackendError struct {
	Scope         string  `json:"scope"`
	Message       string  `json:"message"`
	CorrelationID *string `json:"correlationId,omitempty"`
}
