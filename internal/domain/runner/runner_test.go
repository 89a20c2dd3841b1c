package runner

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/controlroom/internal/domain/events"
	"github.com/GriffinCanCode/controlroom/internal/domain/process"
	"github.com/GriffinCanCode/controlroom/internal/domain/workspace"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

const (
	waitFor = 5 * time.Second
	tick    = 10 * time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func newTestRunner(t *testing.T, resolver Resolver) (*Runner, *events.Recorder) {
	t.Helper()

	rec := events.NewRecorder()
	r := New(zap.NewNop(), rec, resolver, Config{CancelTimeout: 2 * time.Second, OutputDrain: time.Second})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		assert.NoError(t, r.Shutdown(ctx))
	})
	return r, rec
}

func shellRun(script string) types.RunRequest {
	return types.RunRequest{Program: "sh", Args: []string{"-c", script}}
}

func waitExit(t *testing.T, rec *events.Recorder, runID string) types.RunExit {
	t.Helper()

	var exit types.RunExit
	require.Eventually(t, func() bool {
		for _, e := range rec.OfKind(events.KindRunExit) {
			if p := e.Payload.(types.RunExit); p.RunID == runID {
				exit = p
				return true
			}
		}
		return false
	}, waitFor, tick)
	return exit
}

func outputLines(rec *events.Recorder, runID string) []string {
	var lines []string
	for _, e := range rec.OfKind(events.KindRunOutput) {
		if p := e.Payload.(types.RunOutput); p.RunID == runID {
			lines = append(lines, p.Stream+":"+p.Line)
		}
	}
	return lines
}

func TestExecuteInvalidCommand(t *testing.T) {
	r, _ := newTestRunner(t, nil)

	_, err := r.Execute(types.RunRequest{Program: " "})
	assert.ErrorIs(t, err, process.ErrInvalidCommand)
}

func TestExecuteSpawnFailure(t *testing.T) {
	r, _ := newTestRunner(t, nil)

	_, err := r.Execute(types.RunRequest{Program: "/definitely/not/a/binary"})
	assert.ErrorIs(t, err, process.ErrSpawnFailed)
	assert.Empty(t, r.List())
}

func TestExecuteStreamsOutputAndExit(t *testing.T) {
	requireShell(t)
	r, rec := newTestRunner(t, nil)

	started, err := r.Execute(shellRun("echo hello; echo oops 1>&2; exit 2"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(started.RunID, "run_"))

	exit := waitExit(t, rec, started.RunID)
	require.NotNil(t, exit.Code)
	assert.Equal(t, 2, *exit.Code)
	assert.Nil(t, exit.Signal)
	require.NotNil(t, exit.CorrelationID)
	assert.Equal(t, started.RunID, *exit.CorrelationID)

	assert.ElementsMatch(t, []string{"stdout:hello", "stderr:oops"}, outputLines(rec, started.RunID))
	assert.Empty(t, r.List(), "finished runs are untracked")
}

func TestExecuteTTYMergesOutput(t *testing.T) {
	requireShell(t)
	r, rec := newTestRunner(t, nil)

	req := shellRun("echo hi; echo err 1>&2")
	req.TTY = true
	started, err := r.Execute(req)
	if errors.Is(err, process.ErrSpawnFailed) {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}
	require.NoError(t, err)

	exit := waitExit(t, rec, started.RunID)
	require.NotNil(t, exit.Code)
	assert.Equal(t, 0, *exit.Code)
	assert.Nil(t, exit.Signal)
	assert.Equal(t, []string{"stdout:hi", "stdout:err"}, outputLines(rec, started.RunID))
}

func TestRunIDsAreUnique(t *testing.T) {
	requireShell(t)
	r, rec := newTestRunner(t, nil)

	seen := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		started, err := r.Execute(shellRun("true"))
		require.NoError(t, err)
		seen[started.RunID] = struct{}{}
		waitExit(t, rec, started.RunID)
	}
	assert.Len(t, seen, 5)
}

func TestExecuteInWorkspace(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	resolver := workspace.NewResolver("", []types.Workspace{{ID: "ws", Path: dir}})
	r, rec := newTestRunner(t, resolver)

	req := shellRun("pwd")
	req.WorkspaceID = "ws"
	started, err := r.Execute(req)
	require.NoError(t, err)
	waitExit(t, rec, started.RunID)

	lines := outputLines(rec, started.RunID)
	require.Len(t, lines, 1)
	assert.Equal(t, filepath.Base(dir), filepath.Base(strings.TrimPrefix(lines[0], "stdout:")))
}

func TestUnknownWorkspaceInherits(t *testing.T) {
	requireShell(t)
	r, rec := newTestRunner(t, workspace.NewResolver("", nil))

	req := shellRun("true")
	req.WorkspaceID = "missing"
	started, err := r.Execute(req)
	require.NoError(t, err)

	exit := waitExit(t, rec, started.RunID)
	require.NotNil(t, exit.Code)
	assert.Equal(t, 0, *exit.Code)
}

func TestCancelUnknown(t *testing.T) {
	r, _ := newTestRunner(t, nil)
	assert.False(t, r.Cancel("run_missing"))
}

func TestCancelRunning(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	r, rec := newTestRunner(t, nil)

	started, err := r.Execute(types.RunRequest{Program: "sleep", Args: []string{"30"}})
	require.NoError(t, err)

	runs := r.List()
	require.Len(t, runs, 1)
	assert.Equal(t, started.RunID, runs[0].RunID)
	assert.Equal(t, "sleep", runs[0].Program)
	assert.Greater(t, runs[0].PID, 0)

	assert.True(t, r.Cancel(started.RunID))

	exit := waitExit(t, rec, started.RunID)
	require.NotNil(t, exit.Signal)
	assert.Equal(t, "SIGTERM", *exit.Signal)
	assert.Nil(t, exit.Code)

	assert.Eventually(t, func() bool { return len(r.List()) == 0 }, waitFor, tick)
	assert.False(t, r.Cancel(started.RunID))
}
