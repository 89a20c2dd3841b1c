package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/controlroom/internal/domain/events"
	"github.com/GriffinCanCode/controlroom/internal/domain/logs"
	"github.com/GriffinCanCode/controlroom/internal/domain/process"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// Backend error scopes
const (
	ScopeStopCommand = "service-stop-cmd"
	ScopeLogReader   = "service-log-reader"
)

// Config tunes the supervisor
type Config struct {
	// LogCapacity is the number of entries kept per service
	LogCapacity int
	// StopTimeout bounds the wait after signalling a service to terminate
	StopTimeout time.Duration
	// StopCommandTimeout bounds a definition's stop command
	StopCommandTimeout time.Duration
	// BaseDir anchors relative export paths; empty uses the working directory
	BaseDir string
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		LogCapacity:        logs.DefaultCapacity,
		StopTimeout:        4 * time.Second,
		StopCommandTimeout: 30 * time.Second,
	}
}

// Supervisor manages the lifecycle of a set of named services
type Supervisor struct {
	log  *zap.Logger
	sink events.Sink
	cfg  Config

	mu    sync.RWMutex
	defs  map[string]types.ServiceDefinition
	slots map[string]*slot

	wg sync.WaitGroup
}

// New creates a supervisor with no services
func New(log *zap.Logger, sink events.Sink, cfg Config) *Supervisor {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = events.Discard
	}
	if cfg.LogCapacity <= 0 {
		cfg.LogCapacity = logs.DefaultCapacity
	}
	if cfg.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
	}

	return &Supervisor{
		log:   log.Named("supervisor"),
		sink:  sink,
		cfg:   cfg,
		defs:  make(map[string]types.ServiceDefinition),
		slots: make(map[string]*slot),
	}
}

// SetServices replaces the definition set. Known ids keep their runtime
// state, new ids start Stopped with empty logs, and removed ids are
// discarded. A removed service that is still running is terminated.
func (sv *Supervisor) SetServices(defs []types.ServiceDefinition) {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	next := make(map[string]types.ServiceDefinition, len(defs))
	slots := make(map[string]*slot, len(defs))
	for _, def := range defs {
		next[def.ID] = def
		if s, ok := sv.slots[def.ID]; ok {
			slots[def.ID] = s
			continue
		}
		slots[def.ID] = newSlot(def.ID, sv.cfg.LogCapacity, sv.sink)
	}

	for id, s := range sv.slots {
		if _, ok := slots[id]; ok {
			continue
		}
		if h := s.detach(); h != nil {
			sv.log.Info("terminating removed service", zap.String("service", id), zap.Int("pid", h.PID()))
			sv.wg.Add(1)
			go func() {
				defer sv.wg.Done()
				h.Terminate(sv.cfg.StopTimeout)
			}()
		}
	}

	sv.defs = next
	sv.slots = slots
	sv.log.Debug("services configured", zap.Int("count", len(next)))
}

// Services returns the definitions ordered by display name
func (sv *Supervisor) Services() []types.ServiceDefinition {
	sv.mu.RLock()
	defer sv.mu.RUnlock()

	defs := make([]types.ServiceDefinition, 0, len(sv.defs))
	for _, def := range sv.defs {
		defs = append(defs, def)
	}
	types.SortDefinitions(defs)
	return defs
}

func (sv *Supervisor) lookup(op, id string) (*slot, types.ServiceDefinition, error) {
	sv.mu.RLock()
	defer sv.mu.RUnlock()

	def, ok := sv.defs[id]
	if !ok {
		return nil, types.ServiceDefinition{}, process.NotFound(op, id, "service")
	}
	return sv.slots[id], def, nil
}

// Start launches a service. Starting a running service returns its status
// without spawning. A failed spawn restores the previous state.
func (sv *Supervisor) Start(id string) (types.ServiceStatus, error) {
	s, def, err := sv.lookup("start", id)
	if err != nil {
		return types.ServiceStatus{}, err
	}

	s.op.Lock()
	defer s.op.Unlock()

	return sv.start(s, def)
}

func (sv *Supervisor) start(s *slot, def types.ServiceDefinition) (types.ServiceStatus, error) {
	if current := s.reconcile(); current.State == types.ServiceRunning {
		return current, nil
	}

	s.mu.Lock()
	previous, previousErr := s.state, s.lastError
	s.lastError = ""
	s.setLocked(types.ServiceStarting)
	s.mu.Unlock()

	h, err := process.Start(def.Start, process.Options{Dir: def.Cwd})
	if err != nil {
		s.mu.Lock()
		s.lastError = previousErr
		s.setLocked(previous)
		s.mu.Unlock()

		sv.log.Warn("service spawn failed", zap.String("service", def.ID), zap.Error(err))
		return types.ServiceStatus{}, &process.Error{Kind: process.KindOf(err), Op: "start", ID: def.ID, Err: err}
	}

	s.mu.Lock()
	s.handle = h
	s.pid = h.PID()
	s.startedAt = h.StartedAt()
	s.lastError = ""
	status := s.setLocked(types.ServiceRunning)
	s.mu.Unlock()

	sv.log.Debug("service started", zap.String("service", def.ID), zap.Int("pid", h.PID()))

	drained := process.Pump(h, s.record, func(stream string, err error) {
		sv.log.Warn("service output read failed", zap.String("service", s.id), zap.String("stream", stream), zap.Error(err))
		sv.sink.Emit(events.BackendError(ScopeLogReader, err.Error(), types.Ptr(s.correlation)))
	})

	sv.wg.Add(1)
	go sv.watch(s, h, drained)

	return status, nil
}

// watch applies the natural exit of h and waits for its output to drain
func (sv *Supervisor) watch(s *slot, h *process.Handle, drained <-chan struct{}) {
	defer sv.wg.Done()

	<-h.Done()
	if s.settle(h) {
		sv.log.Debug("service exited", zap.String("service", s.id), zap.String("exit", h.Exit().Describe()))
	}
	<-drained
}

// Stop terminates a service. The definition's stop command runs first on a
// best-effort basis; its failure is reported as a backend error and does
// not prevent termination. The service always ends Stopped.
func (sv *Supervisor) Stop(ctx context.Context, id string) (types.ServiceStatus, error) {
	s, def, err := sv.lookup("stop", id)
	if err != nil {
		return types.ServiceStatus{}, err
	}

	s.op.Lock()
	defer s.op.Unlock()

	return sv.stop(ctx, s, def), nil
}

func (sv *Supervisor) stop(ctx context.Context, s *slot, def types.ServiceDefinition) types.ServiceStatus {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.setLocked(types.ServiceStopping)
	s.mu.Unlock()

	if def.Stop != nil {
		sv.runStopCommand(ctx, s, def)
	}

	if h != nil {
		if !h.Terminate(sv.cfg.StopTimeout) {
			sv.log.Warn("service did not exit within stop timeout",
				zap.String("service", def.ID),
				zap.Int("pid", h.PID()),
				zap.Duration("timeout", sv.cfg.StopTimeout))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pid = 0
	s.startedAt = time.Time{}
	s.lastError = ""
	return s.setLocked(types.ServiceStopped)
}

func (sv *Supervisor) runStopCommand(ctx context.Context, s *slot, def types.ServiceDefinition) {
	if sv.cfg.StopCommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sv.cfg.StopCommandTimeout)
		defer cancel()
	}

	if err := process.RunOnce(ctx, *def.Stop, def.Cwd); err != nil {
		sv.log.Warn("service stop command failed", zap.String("service", def.ID), zap.Error(err))
		sv.sink.Emit(events.BackendError(ScopeStopCommand, message(err), types.Ptr(s.correlation)))
	}
}

// Restart stops then starts a service. Only the start result is returned.
func (sv *Supervisor) Restart(ctx context.Context, id string) (types.ServiceStatus, error) {
	s, def, err := sv.lookup("restart", id)
	if err != nil {
		return types.ServiceStatus{}, err
	}

	s.op.Lock()
	defer s.op.Unlock()

	sv.stop(ctx, s, def)
	return sv.start(s, def)
}

// Status reconciles and returns the status of one service
func (sv *Supervisor) Status(id string) (types.ServiceStatus, error) {
	s, _, err := sv.lookup("status", id)
	if err != nil {
		return types.ServiceStatus{}, err
	}
	return s.reconcile(), nil
}

// StatusAll reconciles every service, ordered by display name
func (sv *Supervisor) StatusAll() []types.ServiceStatus {
	defs := sv.Services()
	statuses := make([]types.ServiceStatus, 0, len(defs))
	for _, def := range defs {
		status, err := sv.Status(def.ID)
		if err != nil {
			// removed concurrently
			continue
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Logs returns up to limit of the most recent entries, oldest first.
// A non-positive limit returns the whole buffer.
func (sv *Supervisor) Logs(id string, limit int) ([]types.LogEntry, error) {
	s, _, err := sv.lookup("logs", id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.logs.Cap()
	}
	return s.logs.Last(limit), nil
}

// ClearLogs empties the buffer of a service without touching its state
func (sv *Supervisor) ClearLogs(id string) (bool, error) {
	s, _, err := sv.lookup("clear logs", id)
	if err != nil {
		return false, err
	}
	s.logs.Clear()
	return true, nil
}

// ExportLogs writes the buffer of a service to path and returns the
// resolved path
func (sv *Supervisor) ExportLogs(id, path string) (string, error) {
	s, _, err := sv.lookup("export logs", id)
	if err != nil {
		return "", err
	}

	written, err := logs.Export(path, sv.cfg.BaseDir, s.logs.All())
	if err != nil {
		return "", &process.Error{Kind: process.KindIO, Op: "export logs", ID: id, Err: err}
	}
	return written, nil
}

// Shutdown stops every service with a live process and waits for their
// background goroutines, bounded by ctx
func (sv *Supervisor) Shutdown(ctx context.Context) error {
	var g errgroup.Group
	for _, def := range sv.Services() {
		status, err := sv.Status(def.ID)
		if err != nil || status.PID == nil {
			continue
		}
		id := def.ID
		g.Go(func() error {
			_, err := sv.Stop(ctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("stop services: %w", err)
	}

	done := make(chan struct{})
	go func() {
		sv.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for service goroutines: %w", ctx.Err())
	}
}

// message returns the innermost description of a process error
func message(err error) string {
	var pe *process.Error
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	return err.Error()
}
