package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/controlroom/internal/infrastructure/config"
	"github.com/GriffinCanCode/controlroom/internal/infrastructure/logging"
	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

const controlRoomJSON = `{
  "featureFlags": {"controlRoomEnabled": true},
  "services": [
    {"id": "sleeper", "name": "Sleeper", "start": {"program": "sh", "args": ["-c", "echo up; sleep 30"]}}
  ],
  "workspaces": [{"id": "main", "name": "Main", "path": "."}]
}`

type running struct {
	base   string
	server *Server
	cancel context.CancelFunc
	done   chan error
}

func start(t *testing.T, watch bool) (*running, string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	path := filepath.Join(t.TempDir(), "controlroom.config.json")
	require.NoError(t, os.WriteFile(path, []byte(controlRoomJSON), 0o644))

	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	cfg.ControlRoom.Path = path
	cfg.ControlRoom.Watch = watch
	cfg.Supervisor.StopTimeout = 2 * time.Second

	srv, err := New(cfg, logging.NewNop(), "test")
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	r := &running{
		base:   "http://" + ln.Addr().String(),
		server: srv,
		cancel: cancel,
		done:   make(chan error, 1),
	}
	go func() {
		r.done <- srv.Serve(ctx, ln)
	}()

	t.Cleanup(func() {
		r.stop(t)
	})
	return r, path
}

func (r *running) stop(t *testing.T) {
	t.Helper()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	select {
	case err := <-r.done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}

func (r *running) request(t *testing.T, method, path string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, r.base+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestServeLifecycle(t *testing.T) {
	r, _ := start(t, false)

	code, body := r.request(t, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"healthy"`)

	code, body = r.request(t, http.MethodPost, "/services/sleeper/start")
	require.Equal(t, http.StatusOK, code, string(body))
	var status types.ServiceStatus
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, types.ServiceRunning, status.State)
	require.NotNil(t, status.PID)

	code, body = r.request(t, http.MethodGet, "/workspaces")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"main"`)

	code, _ = r.request(t, http.MethodGet, "/services/missing/status")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = r.request(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "controlroom_service_transitions_total")

	r.stop(t)

	st, err := r.server.supervisor.Status("sleeper")
	require.NoError(t, err)
	assert.Equal(t, types.ServiceStopped, st.State)
	assert.Empty(t, r.server.runner.List())
}

func TestApplyReload(t *testing.T) {
	r, path := start(t, false)

	updated := strings.Replace(controlRoomJSON, `"id": "sleeper", "name": "Sleeper"`, `"id": "napper", "name": "Napper"`, 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	code, body := r.request(t, http.MethodPost, "/config/reload")
	require.Equal(t, http.StatusOK, code, string(body))

	defs := r.server.supervisor.Services()
	require.Len(t, defs, 1)
	assert.Equal(t, "napper", defs[0].ID)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	code, _ = r.request(t, http.MethodPost, "/config/reload")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "napper", r.server.Current().Services[0].ID)
}

func TestWatchAppliesChanges(t *testing.T) {
	r, path := start(t, true)

	updated := strings.Replace(controlRoomJSON, `"id": "sleeper", "name": "Sleeper"`, `"id": "dozer", "name": "Dozer"`, 1)
	require.Eventually(t, func() bool {
		r.server.mu.Lock()
		ready := r.server.watcher != nil
		r.server.mu.Unlock()
		return ready
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		defs := r.server.supervisor.Services()
		return len(defs) == 1 && defs[0].ID == "dozer"
	}, 5*time.Second, 20*time.Millisecond)
}
