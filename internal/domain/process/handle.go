package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// Options controls how a process is launched
type Options struct {
	// Dir is the base working directory; empty inherits the current one
	Dir string
	// TTY runs the process on a pseudo-terminal with merged output
	TTY bool
}

// Stream is one readable output stream of a process
type Stream struct {
	Name   string
	Reader io.ReadCloser
}

// ExitStatus describes how a process terminated
type ExitStatus struct {
	// Code is the exit code, -1 when killed by a signal or unknown
	Code int
	// Signal names the terminating signal, if any
	Signal string
	// Err is a wait failure unrelated to the exit code
	Err error
}

// Success reports a clean zero exit
func (s ExitStatus) Success() bool {
	return s.Code == 0 && s.Signal == "" && s.Err == nil
}

// Describe returns a human-readable summary
func (s ExitStatus) Describe() string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("process wait failed: %v", s.Err)
	case s.Signal != "":
		return fmt.Sprintf("process terminated by signal %s", s.Signal)
	default:
		return fmt.Sprintf("process exited with code %d", s.Code)
	}
}

// Handle is a live OS process started by this package.
// It is safe for concurrent use.
type Handle struct {
	cmd     *exec.Cmd
	pid     int
	started time.Time
	streams []Stream
	done    chan struct{}

	mu     sync.Mutex
	exited bool
	exit   ExitStatus
}

// Start spawns spec. Spawn failures are reported as KindSpawnFailed,
// an empty program as KindInvalidCommand.
func Start(spec types.CommandSpec, opts Options) (*Handle, error) {
	cmd, err := Command(spec, opts.Dir)
	if err != nil {
		return nil, err
	}

	var streams []Stream
	if opts.TTY {
		streams, err = startTTY(cmd)
	} else {
		streams, err = startPiped(cmd)
	}
	if err != nil {
		return nil, &Error{Kind: KindSpawnFailed, Op: "spawn", ID: spec.Program, Err: err}
	}

	h := &Handle{
		cmd:     cmd,
		pid:     cmd.Process.Pid,
		started: time.Now(),
		streams: streams,
		done:    make(chan struct{}),
	}
	go h.wait()
	return h, nil
}

// startPiped gives the child the write ends of two OS pipes, so Wait never
// blocks on output and readers see EOF once every holder of the pipe exits.
func startPiped(cmd *exec.Cmd) ([]Stream, error) {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("create stderr pipe: %w", err)
	}

	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	configureGroup(cmd)

	err = cmd.Start()
	stdoutW.Close()
	stderrW.Close()
	if err != nil {
		stdoutR.Close()
		stderrR.Close()
		return nil, err
	}

	return []Stream{
		{Name: types.StreamStdout, Reader: stdoutR},
		{Name: types.StreamStderr, Reader: stderrR},
	}, nil
}

func startTTY(cmd *exec.Cmd) ([]Stream, error) {
	tty, err := startPTY(cmd)
	if err != nil {
		return nil, err
	}
	return []Stream{{Name: types.StreamStdout, Reader: tty}}, nil
}

// wait reaps the process. Where exit can be observed without reaping, the
// rest of the group is killed while the leader's pid is still reserved.
func (h *Handle) wait() {
	held := awaitExit(h.pid)
	if held {
		h.release()
	}
	err := h.cmd.Wait()
	if !held {
		h.release()
	}

	status := ExitStatus{Code: -1}
	if state := h.cmd.ProcessState; state != nil {
		status.Code = state.ExitCode()
		status.Signal = signalName(state)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		status.Err = err
	}

	h.mu.Lock()
	h.exit = status
	h.mu.Unlock()
	close(h.done)
}

// release marks the leader as gone and kills anything left in its group
func (h *Handle) release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exited = true
	killGroup(h.pid)
}

// PID returns the OS process id
func (h *Handle) PID() int {
	return h.pid
}

// StartedAt returns the spawn time
func (h *Handle) StartedAt() time.Time {
	return h.started
}

// Streams returns the output streams. Each must be consumed and closed
// exactly once, normally through Pump.
func (h *Handle) Streams() []Stream {
	return h.streams
}

// Done returns a channel closed once the process has exited and been reaped
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Exited probes for exit without blocking
func (h *Handle) Exited() (ExitStatus, bool) {
	select {
	case <-h.done:
		return h.Exit(), true
	default:
		return ExitStatus{}, false
	}
}

// Exit blocks until the process has exited and returns its status
func (h *Handle) Exit() ExitStatus {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exit
}

// Signal delivers sig to the process group. Signalling an exited process is a no-op.
// Once the leader exits its group is killed, so no survivor outlives it.
func (h *Handle) Signal(sig os.Signal) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.exited {
		return nil
	}

	err := signalProcess(h.cmd.Process, sig)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// Kill forcibly terminates the process group
func (h *Handle) Kill() error {
	return h.Signal(os.Kill)
}

// Terminate asks the process to exit and waits up to grace for it.
// When the grace period expires the process is killed without further
// waiting. It reports whether the process exited within grace.
func (h *Handle) Terminate(grace time.Duration) bool {
	if err := h.Signal(terminateSignal); err != nil {
		_ = h.Kill()
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-h.done:
		return true
	case <-timer.C:
		_ = h.Kill()
		return false
	}
}
