// Package process launches and tracks the OS processes behind services and runs.
//
// A Handle wraps one spawned exec.Cmd. Exactly one goroutine performs the
// blocking Wait and closes the handle's done channel, so any number of
// observers can block on Done() or probe Exited() without polling.
//
// Features:
//   - CommandSpec to exec.Cmd translation (args, working directory, env overrides)
//   - stdin closed, stdout/stderr delivered through pipes owned by the handle
//   - Optional PTY mode where both streams are merged onto one terminal
//   - Process-group signalling so child trees are terminated together
//   - Graceful termination with a bounded wait, then a forced kill
//   - Line pumping of output streams independent of process exit
//   - Typed errors (NotFound, InvalidCommand, SpawnFailed, IoFailure, Timeout)
//
// Example Usage:
//
//	h, err := process.Start(types.CommandSpec{Program: "sleep", Args: []string{"5"}}, process.Options{})
//	if err != nil {
//	    return err
//	}
//	drained := process.Pump(h, func(stream, line string) { fmt.Println(stream, line) }, nil)
//	h.Terminate(4 * time.Second)
//	<-drained
package process
