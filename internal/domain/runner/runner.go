// Package runner executes ad-hoc commands outside the configured service set.
//
// A run is tracked from spawn until its exit is observed, then discarded.
// Output is streamed to the event sink as it arrives and never retained.
package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/controlroom/internal/domain/events"
	"github.com/GriffinCanCode/controlroom/internal/domain/process"
	"github.com/GriffinCanCode/controlroom/internal/shared/id"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// ScopeOutputReader is the backend error scope for failed output reads
const ScopeOutputReader = "run-output-reader"

// Resolver maps a workspace id to a working directory
type Resolver interface {
	Resolve(workspaceID string) (string, bool)
}

// Config tunes the runner
type Config struct {
	// CancelTimeout bounds the wait after signalling a run to terminate
	CancelTimeout time.Duration
	// OutputDrain bounds how long the exit notification waits for output
	OutputDrain time.Duration
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		CancelTimeout: 3 * time.Second,
		OutputDrain:   time.Second,
	}
}

type run struct {
	info   types.RunInfo
	handle *process.Handle
}

// Runner tracks active runs by id
type Runner struct {
	log      *zap.Logger
	sink     events.Sink
	resolver Resolver
	cfg      Config
	newID    func() string

	mu   sync.Mutex
	runs map[string]*run

	wg sync.WaitGroup
}

// New creates a runner. A nil resolver makes every run inherit the
// current working directory.
func New(log *zap.Logger, sink events.Sink, resolver Resolver, cfg Config) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = events.Discard
	}
	return &Runner{
		log:      log.Named("runner"),
		sink:     sink,
		resolver: resolver,
		cfg:      cfg,
		newID:    func() string { return id.NewRunID().String() },
		runs:     make(map[string]*run),
	}
}

func (r *Runner) workDir(workspaceID string) string {
	if workspaceID == "" || r.resolver == nil {
		return ""
	}
	dir, ok := r.resolver.Resolve(workspaceID)
	if !ok {
		r.log.Debug("unknown workspace, inheriting working directory", zap.String("workspace", workspaceID))
		return ""
	}
	return dir
}

// Execute spawns req and returns its run id without waiting for it
func (r *Runner) Execute(req types.RunRequest) (types.RunStarted, error) {
	spec := req.Spec()
	if err := process.Validate(spec); err != nil {
		return types.RunStarted{}, err
	}

	h, err := process.Start(spec, process.Options{Dir: r.workDir(req.WorkspaceID), TTY: req.TTY})
	if err != nil {
		r.log.Warn("run spawn failed", zap.String("program", req.Program), zap.Error(err))
		return types.RunStarted{}, &process.Error{Kind: process.KindOf(err), Op: "run", ID: req.Program, Err: err}
	}

	runID := r.newID()
	tracked := &run{
		info: types.RunInfo{
			RunID:       runID,
			Program:     req.Program,
			Args:        append([]string{}, req.Args...),
			WorkspaceID: req.WorkspaceID,
			PID:         h.PID(),
			StartedAtMs: h.StartedAt().UnixMilli(),
		},
		handle: h,
	}

	r.mu.Lock()
	r.runs[runID] = tracked
	r.mu.Unlock()

	r.log.Debug("run started", zap.String("run", runID), zap.String("program", req.Program), zap.Int("pid", h.PID()))

	corr := types.Ptr(runID)
	drained := process.Pump(h,
		func(stream, line string) {
			r.sink.Emit(events.RunOutput(types.RunOutput{
				RunID:         runID,
				Stream:        stream,
				TimestampMs:   time.Now().UnixMilli(),
				Line:          line,
				CorrelationID: corr,
			}))
		},
		func(stream string, err error) {
			r.log.Warn("run output read failed", zap.String("run", runID), zap.String("stream", stream), zap.Error(err))
			r.sink.Emit(events.BackendError(ScopeOutputReader, err.Error(), corr))
		},
	)

	r.wg.Add(1)
	go r.watch(runID, h, drained)

	return types.RunStarted{RunID: runID}, nil
}

// watch untracks the run as soon as it exits, then reports the exit once
// its output has drained or the drain window has passed
func (r *Runner) watch(runID string, h *process.Handle, drained <-chan struct{}) {
	defer r.wg.Done()

	exit := h.Exit()

	r.mu.Lock()
	delete(r.runs, runID)
	r.mu.Unlock()

	timer := time.NewTimer(r.cfg.OutputDrain)
	select {
	case <-drained:
	case <-timer.C:
		r.log.Debug("run output still open after exit", zap.String("run", runID))
	}
	timer.Stop()

	msg := types.RunExit{RunID: runID, CorrelationID: types.Ptr(runID)}
	if exit.Code >= 0 {
		msg.Code = types.Ptr(exit.Code)
	}
	if exit.Signal != "" {
		msg.Signal = types.Ptr(exit.Signal)
	}
	r.sink.Emit(events.RunExit(msg))

	r.log.Debug("run exited", zap.String("run", runID), zap.String("exit", exit.Describe()))
}

// Cancel terminates a run. It reports false for unknown or finished runs.
// The wait for exit is bounded and its expiry is not an error.
func (r *Runner) Cancel(runID string) bool {
	r.mu.Lock()
	tracked, ok := r.runs[runID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	if !tracked.handle.Terminate(r.cfg.CancelTimeout) {
		r.log.Warn("run did not exit within cancel timeout", zap.String("run", runID))
	}
	return true
}

// List returns the active runs, oldest first
func (r *Runner) List() []types.RunInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]types.RunInfo, 0, len(r.runs))
	for _, tracked := range r.runs {
		infos = append(infos, tracked.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].StartedAtMs != infos[j].StartedAtMs {
			return infos[i].StartedAtMs < infos[j].StartedAtMs
		}
		return infos[i].RunID < infos[j].RunID
	})
	return infos
}

// Shutdown cancels every active run and waits for their exit
// notifications, bounded by ctx
func (r *Runner) Shutdown(ctx context.Context) error {
	var g errgroup.Group
	for _, info := range r.List() {
		runID := info.RunID
		g.Go(func() error {
			r.Cancel(runID)
			return nil
		})
	}
	_ = g.Wait()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for runs: %w", ctx.Err())
	}
}
