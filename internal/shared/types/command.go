package types

// CommandSpec describes an executable invocation.
// Program is validated at spawn time, not at construction.
type CommandSpec struct {
	Program string            `json:"program" yaml:"program" toml:"program"`
	Args    []string          `json:"args" yaml:"args" toml:"args"`
	Cwd     string            `json:"cwd,omitempty" yaml:"cwd,omitempty" toml:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
}

// RunRequest is the input of a one-off command execution
type RunRequest struct {
	WorkspaceID string            `json:"workspaceId,omitempty"`
	Program     string            `json:"program"`
	Args        []string          `json:"args"`
	Cwd         string            `json:"cwd,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	TTY         bool              `json:"tty,omitempty"`
}

// Spec returns the command part of the request
func (r RunRequest) Spec() CommandSpec {
	return CommandSpec{
		Program: r.Program,
		Args:    r.Args,
		Cwd:     r.Cwd,
		Env:     r.Env,
	}
}

// RunStarted is returned once a run has been spawned
type RunStarted struct {
	RunID string `json:"runId"`
}

// RunInfo describes an active run
type RunInfo struct {
	RunID       string   `json:"runId"`
	Program     string   `json:"program"`
	Args        []string `json:"args"`
	WorkspaceID string   `json:"workspaceId,omitempty"`
	PID         int      `json:"pid"`
	StartedAtMs int64    `json:"startedAtMs"`
}
