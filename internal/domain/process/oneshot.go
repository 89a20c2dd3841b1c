package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/GriffinCanCode/controlroom/internal/shared/types"
)

// OneshotWaitDelay bounds how long output copying may outlive a killed command
const OneshotWaitDelay = 2 * time.Second

// RunOnce runs spec to completion and fails unless it exits with code 0.
// Cancelling ctx kills the command.
func RunOnce(ctx context.Context, spec types.CommandSpec, baseDir string) error {
	if err := Validate(spec); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = ResolveDir(spec, baseDir)
	if len(spec.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), spec.Env)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = OneshotWaitDelay

	if err := cmd.Start(); err != nil {
		return &Error{
			Kind: KindSpawnFailed,
			Op:   "oneshot",
			ID:   spec.Program,
			Err:  fmt.Errorf("oneshot command spawn failed: %w", err),
		}
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		kind := KindIO
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return &Error{Kind: kind, Op: "oneshot", ID: spec.Program, Err: fmt.Errorf("oneshot command aborted: %w", ctxErr)}
	}
	if err == nil {
		return nil
	}

	code := -1
	if cmd.ProcessState != nil {
		code = cmd.ProcessState.ExitCode()
	}
	return &Error{
		Kind: KindIO,
		Op:   "oneshot",
		ID:   spec.Program,
		Err:  fmt.Errorf("oneshot command failed (code %d): %s", code, strings.TrimSpace(stderr.String())),
	}
}
