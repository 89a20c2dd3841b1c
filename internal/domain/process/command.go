package process

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// ErrEmptyProgram is returned when a command spec has no program
var ErrEmptyProgram = errors.New("command program cannot be empty")

// Validate checks the command can be spawned
func Validate(spec types.CommandSpec) error {
	if strings.TrimSpace(spec.Program) == "" {
		return &Error{Kind: KindInvalidCommand, Op: "validate", Err: ErrEmptyProgram}
	}
	return nil
}

// ResolveDir returns the working directory for spec.
// The command's own cwd wins; a relative cwd is joined onto baseDir.
// An empty result means the current directory is inherited.
func ResolveDir(spec types.CommandSpec, baseDir string) string {
	if spec.Cwd == "" {
		return baseDir
	}
	if filepath.IsAbs(spec.Cwd) || baseDir == "" {
		return spec.Cwd
	}
	return filepath.Join(baseDir, spec.Cwd)
}

// Command builds an exec.Cmd for spec with stdin closed.
// Output streams are left unset for the caller to wire.
func Command(spec types.CommandSpec, baseDir string) (*exec.Cmd, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	cmd := exec.Command(spec.Program, spec.Args...)
	cmd.Dir = ResolveDir(spec, baseDir)
	cmd.Stdin = nil
	if len(spec.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), spec.Env)
	}
	return cmd, nil
}

// MergeEnv appends overrides to base in a stable order.
// exec keeps the last value of duplicated keys, so overrides win.
func MergeEnv(base []string, overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(base)+len(keys))
	env = append(env, base...)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
