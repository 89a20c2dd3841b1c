//go:build !unix

package process

import (
	"errors"
	"os"
	"os/exec"
)

var terminateSignal os.Signal = os.Kill

func configureGroup(cmd *exec.Cmd) {}

func startPTY(cmd *exec.Cmd) (*os.File, error) {
	return nil, errors.New("pty mode is not supported on this platform")
}

func signalProcess(p *os.Process, sig os.Signal) error {
	return p.Signal(sig)
}

func killGroup(pid int) {}

func signalName(state *os.ProcessState) string {
	return ""
}

func streamClosed(err error) bool {
	return errors.Is(err, os.ErrClosed)
}
