package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

const jsonConfig = `{
  "featureFlags": {"controlRoomEnabled": true},
  "services": [
    {"id": "api", "name": "API", "cwd": "backend", "start": {"program": "go", "args": ["run", "."]},
     "stop": {"program": "make", "args": ["stop"]}}
  ],
  "workspaces": [{"id": "repo", "name": "Repo", "path": "/src/repo"}]
}`

const yamlConfig = `
featureFlags:
  controlRoomEnabled: true
services:
  - id: api
    name: API
    cwd: backend
    start:
      program: go
      args: [run, .]
    stop:
      program: make
      args: [stop]
workspaces:
  - id: repo
    name: Repo
    path: /src/repo
git:
  enabled: false
  maxCommits: 10
`

const tomlConfig = `
[featureFlags]
controlRoomEnabled = true

[[services]]
id = "api"
name = "API"
cwd = "backend"
  [services.start]
  program = "go"
  args = ["run", "."]
  [services.stop]
  program = "make"
  args = ["stop"]

[[workspaces]]
id = "repo"
name = "Repo"
path = "/src/repo"
`

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"json", ".json", jsonConfig},
		{"yaml", ".yaml", yamlConfig},
		{"yml", ".yml", yamlConfig},
		{"toml", ".toml", tomlConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Decode([]byte(tt.data), tt.ext)
			require.NoError(t, err)

			assert.True(t, cfg.FeatureFlags.ControlRoomEnabled)
			require.Len(t, cfg.Services, 1)
			svc := cfg.Services[0]
			assert.Equal(t, "api", svc.ID)
			assert.Equal(t, "API", svc.DisplayName())
			assert.Equal(t, "backend", svc.Cwd)
			assert.Equal(t, types.CommandSpec{Program: "go", Args: []string{"run", "."}}, svc.Start)
			require.NotNil(t, svc.Stop)
			assert.Equal(t, "make", svc.Stop.Program)
			assert.Nil(t, svc.Restart)

			assert.Equal(t, []types.Workspace{{ID: "repo", Name: "Repo", Path: "/src/repo"}}, cfg.Workspaces)
		})
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	cfg, err := Decode([]byte(`{"services": []}`), ".json")
	require.NoError(t, err)

	assert.True(t, cfg.Git.Enabled)
	assert.Equal(t, 30, cfg.Git.MaxCommits)
	assert.NotNil(t, cfg.Workspaces)

	cfg, err = Decode([]byte(yamlConfig), ".yaml")
	require.NoError(t, err)
	assert.False(t, cfg.Git.Enabled)
	assert.Equal(t, 10, cfg.Git.MaxCommits)
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"unknown format", ".ini", `a=b`},
		{"malformed json", ".json", `{"services": [`},
		{"missing service id", ".json", `{"services": [{"start": {"program": "x"}}]}`},
		{"duplicate service id", ".json", `{"services": [{"id": "a"}, {"id": "a"}]}`},
		{"duplicate workspace id", ".json", `{"workspaces": [{"id": "w", "path": "/a"}, {"id": "w", "path": "/b"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.ext)
			assert.Error(t, err)
		})
	}
}

func TestDecodeAllowsEmptyProgram(t *testing.T) {
	cfg, err := Decode([]byte(`{"services": [{"id": "a", "start": {"program": ""}}]}`), ".json")
	require.NoError(t, err)
	assert.Len(t, cfg.Services, 1)
}

func TestLocate(t *testing.T) {
	parent := t.TempDir()
	child := filepath.Join(parent, "app")
	require.NoError(t, os.Mkdir(child, 0o755))

	_, err := Locate("", child)
	assert.ErrorIs(t, err, ErrNoConfigFile)

	inParent := filepath.Join(parent, "controlroom.config.toml")
	require.NoError(t, os.WriteFile(inParent, []byte(tomlConfig), 0o644))
	path, err := Locate("", child)
	require.NoError(t, err)
	assert.Equal(t, inParent, path)

	inChild := filepath.Join(child, "controlroom.config.yaml")
	require.NoError(t, os.WriteFile(inChild, []byte(yamlConfig), 0o644))
	path, err = Locate("", child)
	require.NoError(t, err)
	assert.Equal(t, inChild, path)

	path, err = Locate("custom.json", child)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(child, "custom.json"), path)
}

func TestStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controlroom.config.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonConfig), 0o644))

	store := NewStoreAt(path, nil)
	assert.Empty(t, store.Current().Services)

	cfg, err := store.Reload()
	require.NoError(t, err)
	assert.Len(t, cfg.Services, 1)
	assert.Equal(t, cfg, store.Current())

	require.NoError(t, os.WriteFile(path, []byte(`{"services": [`), 0o644))
	_, err = store.Reload()
	assert.Error(t, err)
	assert.Len(t, store.Current().Services, 1, "failed reload keeps previous config")
}

func TestStoreWithoutFile(t *testing.T) {
	store := NewStoreAt("", nil)
	cfg, err := store.Reload()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultControlRoomConfig(), cfg)
}
