package events

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// Multi fans events out to several sinks. A panicking sink is logged
// and does not prevent delivery to the others.
type Multi struct {
	log   *zap.Logger
	mu    sync.RWMutex
	sinks []Sink
}

// NewMulti creates a fan-out sink
func NewMulti(log *zap.Logger, sinks ...Sink) *Multi {
	if log == nil {
		log = zap.NewNop()
	}
	return &Multi{log: log, sinks: sinks}
}

// Add registers another sink
func (m *Multi) Add(s Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, s)
}

// Emit delivers e to every sink in registration order
func (m *Multi) Emit(e Event) {
	m.mu.RLock()
	sinks := m.sinks
	m.mu.RUnlock()

	for _, s := range sinks {
		m.deliver(s, e)
	}
}

func (m *Multi) deliver(s Sink, e Event) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("event sink panicked", zap.String("kind", string(e.Kind)), zap.Any("panic", r))
		}
	}()
	s.Emit(e)
}

// LogSink writes lifecycle notifications to a zap logger.
// Output lines are skipped.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a logging sink
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log.Named("events")}
}

// Emit logs state changes and exits at debug and backend errors at warn
func (s *LogSink) Emit(e Event) {
	switch p := e.Payload.(type) {
	case types.ServiceStatus:
		fields := []zap.Field{zap.String("service", p.ServiceID), zap.String("state", string(p.State))}
		if p.PID != nil {
			fields = append(fields, zap.Int("pid", *p.PID))
		}
		if p.LastError != nil {
			fields = append(fields, zap.String("last_error", *p.LastError))
		}
		s.log.Debug("service state", fields...)
	case types.RunExit:
		fields := []zap.Field{zap.String("run", p.RunID)}
		if p.Code != nil {
			fields = append(fields, zap.Int("code", *p.Code))
		}
		if p.Signal != nil {
			fields = append(fields, zap.String("signal", *p.Signal))
		}
		s.log.Debug("run exited", fields...)
	case types.BackendError:
		s.log.Warn("backend error", zap.String("scope", p.Scope), zap.String("message", p.Message))
	}
}

// Recorder keeps every event it receives
type Recorder struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

// Emit records e
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Events returns a copy of all recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfKind returns recorded events of one kind
func (r *Recorder) OfKind(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// States returns the payloads of recorded service-state events
func (r *Recorder) States() []types.ServiceStatus {
	var out []types.ServiceStatus
	for _, e := range r.OfKind(KindServiceState) {
		out = append(out, e.Payload.(types.ServiceStatus))
	}
	return out
}

// Notify returns a channel signalled after events are recorded
func (r *Recorder) Notify() <-chan struct{} {
	return r.notify
}

// Reset discards recorded events
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
