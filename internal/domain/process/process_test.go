package process

import (
	"context"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
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

func shell(script string) types.CommandSpec {
	return types.CommandSpec{Program: "sh", Args: []string{"-c", script}}
}

type collector struct {
	mu    sync.Mutex
	lines map[string][]string
}

func newCollector() *collector {
	return &collector{lines: make(map[string][]string)}
}

func (c *collector) add(stream, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[stream] = append(c.lines[stream], line)
}

func (c *collector) get(stream string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines[stream]...)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(types.CommandSpec{Program: "echo"}))

	err := Validate(types.CommandSpec{Program: "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCommand)
	assert.ErrorIs(t, err, ErrEmptyProgram)
	assert.Equal(t, KindInvalidCommand, KindOf(err))
}

func TestResolveDir(t *testing.T) {
	tests := []struct {
		name string
		cwd  string
		base string
		want string
	}{
		{"inherit", "", "", ""},
		{"base only", "", "/srv", "/srv"},
		{"absolute wins", "/opt/app", "/srv", "/opt/app"},
		{"relative joined", "web", "/srv", "/srv/web"},
		{"relative without base", "web", "", "web"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDir(types.CommandSpec{Program: "x", Cwd: tt.cwd}, tt.base)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeEnv(t *testing.T) {
	env := MergeEnv([]string{"A=1"}, map[string]string{"C": "3", "B": "2"})
	assert.Equal(t, []string{"A=1", "B=2", "C=3"}, env)
}

func TestErrorKinds(t *testing.T) {
	err := NotFound("start", "api", "service")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrSpawnFailed)
	assert.Contains(t, err.Error(), "service not found: api")
	assert.Equal(t, Kind(""), KindOf(assert.AnError))
}

func TestStartCapturesStreams(t *testing.T) {
	requireShell(t)

	h, err := Start(shell("echo out; echo err 1>&2"), Options{})
	require.NoError(t, err)
	assert.Greater(t, h.PID(), 0)

	c := newCollector()
	drained := Pump(h, c.add, nil)

	status := h.Exit()
	<-drained

	assert.True(t, status.Success())
	assert.Equal(t, []string{"out"}, c.get(types.StreamStdout))
	assert.Equal(t, []string{"err"}, c.get(types.StreamStderr))
}

func TestStartEnvAndDir(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()

	spec := shell(`echo "$CR_TEST"; pwd`)
	spec.Env = map[string]string{"CR_TEST": "hello"}

	h, err := Start(spec, Options{Dir: dir})
	require.NoError(t, err)

	c := newCollector()
	drained := Pump(h, c.add, nil)
	h.Exit()
	<-drained

	lines := c.get(types.StreamStdout)
	require.Len(t, lines, 2)
	assert.Equal(t, "hello", lines[0])
	assert.Equal(t, filepath.Base(dir), filepath.Base(lines[1]))
}

func TestStartSpawnFailure(t *testing.T) {
	_, err := Start(types.CommandSpec{Program: "/definitely/not/a/binary"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpawnFailed)
}

func TestStartInvalid(t *testing.T) {
	_, err := Start(types.CommandSpec{}, Options{})
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestExitCode(t *testing.T) {
	requireShell(t)

	h, err := Start(shell("exit 3"), Options{})
	require.NoError(t, err)
	<-Pump(h, func(string, string) {}, nil)

	status := h.Exit()
	assert.Equal(t, 3, status.Code)
	assert.False(t, status.Success())
	assert.Contains(t, status.Describe(), "code 3")

	_, exited := h.Exited()
	assert.True(t, exited)
}

func TestTerminate(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	h, err := Start(types.CommandSpec{Program: "sleep", Args: []string{"30"}}, Options{})
	require.NoError(t, err)
	drained := Pump(h, func(string, string) {}, nil)

	_, exited := h.Exited()
	assert.False(t, exited)

	assert.True(t, h.Terminate(2*time.Second))
	<-drained

	status := h.Exit()
	assert.False(t, status.Success())
	assert.NoError(t, h.Signal(terminateSignal), "signalling an exited process is a no-op")
}

func TestTerminateEscalates(t *testing.T) {
	requireShell(t)

	h, err := Start(shell(`trap "" TERM; echo ready; while :; do sleep 0.05; done`), Options{})
	require.NoError(t, err)

	ready := make(chan struct{}, 1)
	drained := Pump(h, func(_, line string) {
		if line == "ready" {
			ready <- struct{}{}
		}
	}, nil)
	<-ready

	assert.False(t, h.Terminate(100*time.Millisecond))

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process survived kill")
	}
	<-drained
}

func TestExitKillsBackgroundChildren(t *testing.T) {
	requireShell(t)

	h, err := Start(shell("sleep 30 & exit 0"), Options{})
	require.NoError(t, err)
	drained := Pump(h, func(string, string) {}, nil)

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("leader did not exit")
	}
	assert.True(t, h.Exit().Success())

	h.mu.Lock()
	released := h.exited
	h.mu.Unlock()
	assert.True(t, released, "signals stop before the leader is reaped")

	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		t.Fatal("background child kept the output open")
	}
	assert.NoError(t, h.Kill(), "the group is gone once the leader exits")
}

func TestRunOnce(t *testing.T) {
	requireShell(t)
	ctx := context.Background()

	assert.NoError(t, RunOnce(ctx, shell("exit 0"), ""))

	err := RunOnce(ctx, shell("echo boom 1>&2; exit 4"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneshot command failed (code 4): boom")

	err = RunOnce(ctx, types.CommandSpec{Program: "/definitely/not/a/binary"}, "")
	assert.ErrorIs(t, err, ErrSpawnFailed)
	assert.Contains(t, err.Error(), "oneshot command spawn failed")
}

func TestRunOnceTimeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := RunOnce(ctx, types.CommandSpec{Program: "sleep", Args: []string{"10"}}, "")
	assert.ErrorIs(t, err, ErrTimeout)
}
