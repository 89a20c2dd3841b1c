package supervisor

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/controlroom/internal/domain/events"
	"github.com/GriffinCanCode/controlroom/internal/domain/logs"
	"github.com/GriffinCanCode/controlroom/internal/domain/process"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// slot is the runtime state of one service
type slot struct {
	id          string
	correlation string
	logs        *logs.Buffer
	sink        events.Sink

	// op serializes start, stop and restart
	op sync.Mutex

	mu        sync.Mutex
	state     types.ServiceState
	handle    *process.Handle
	pid       int
	startedAt time.Time
	lastError string
}

func newSlot(id string, capacity int, sink events.Sink) *slot {
	return &slot{
		id:          id,
		correlation: "service:" + id,
		logs:        logs.NewBuffer(capacity),
		sink:        sink,
		state:       types.ServiceStopped,
	}
}

// statusLocked snapshots the slot. Callers hold s.mu.
func (s *slot) statusLocked() types.ServiceStatus {
	status := types.ServiceStatus{
		ServiceID:     s.id,
		State:         s.state,
		CorrelationID: types.Ptr(s.correlation),
	}
	if s.pid != 0 {
		status.PID = types.Ptr(s.pid)
	}
	if s.state == types.ServiceRunning && !s.startedAt.IsZero() {
		status.UptimeSec = types.Ptr(int64(time.Since(s.startedAt) / time.Second))
	}
	if s.lastError != "" {
		status.LastError = types.Ptr(s.lastError)
	}
	return status
}

// setLocked moves to state and emits the new status. Callers hold s.mu.
func (s *slot) setLocked(state types.ServiceState) types.ServiceStatus {
	s.state = state
	status := s.statusLocked()
	s.sink.Emit(events.ServiceState(status))
	return status
}

// exitedLocked records that the owned process has terminated
func (s *slot) exitedLocked(exit process.ExitStatus) types.ServiceStatus {
	s.handle = nil
	s.pid = 0
	s.startedAt = time.Time{}
	if exit.Success() {
		s.lastError = ""
		return s.setLocked(types.ServiceStopped)
	}
	s.lastError = exit.Describe()
	return s.setLocked(types.ServiceError)
}

// reconcile applies an exit the watcher has not yet observed
func (s *slot) reconcile() types.ServiceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		if exit, ok := s.handle.Exited(); ok {
			return s.exitedLocked(exit)
		}
	}
	return s.statusLocked()
}

// settle applies the exit of h if the slot still owns it
func (s *slot) settle(h *process.Handle) bool {
	exit := h.Exit()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != h {
		return false
	}
	s.exitedLocked(exit)
	return true
}

// detach releases the live handle for termination
func (s *slot) detach() *process.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.handle
	s.handle = nil
	return h
}

func (s *slot) record(stream, line string) {
	entry := types.LogEntry{
		ServiceID:     s.id,
		Stream:        stream,
		TimestampMs:   time.Now().UnixMilli(),
		Level:         logs.DetectLevel(line, stream),
		Line:          line,
		CorrelationID: types.Ptr(s.correlation),
	}
	s.logs.Push(entry)
	s.sink.Emit(events.ServiceLog(entry))
}
