//go:build linux || darwin

package executor

import (
	"context"
	"os"
	"syscall"
	"time"

	"agentcage/sandbox/result"
)

// helperSetupExitCode is reserved by sandbox-init for its own failures, so
// the executor can tell "the sandbox could not be armed" apart from "the
// target exited 125".
const helperSetupExitCode = 125

// supervise races child exit against the wall deadline, the output cap,
// caller cancellation, and explicit kill requests. Whichever fires first
// records the kill reason and tears the process group down.
func (e *CommandExecutor) supervise(ctx context.Context, h *running, wall time.Duration, capped <-chan struct{}, done <-chan struct{}, cgKill func()) {
	// An exhausted deadline still has to fire: a caller whose Deadline is
	// already past gets an immediate timeout, not an unbounded run.
	if wall <= 0 {
		wall = time.Nanosecond
	}
	wallTimer := time.After(wall)

	var reason string
	select {
	case <-done:
		return
	case <-ctx.Done():
		reason = killReasonCancelled
	case <-wallTimer:
		reason = killReasonTimeout
	case <-capped:
		reason = killReasonOutput
	case reason = <-h.killCh:
	}

	h.setReason(reason)
	e.metrics.ObserveKill(ctx, h.profile, reason)
	terminateGroup(h.pid, e.cfg.KillGrace, done, cgKill)
}

// terminateGroup kills the whole process group: SIGTERM first, SIGKILL after
// the grace period if the child has not been reaped by then. cgKill, when
// set, sweeps up anything that escaped the group.
func terminateGroup(pid int, grace time.Duration, done <-chan struct{}, cgKill func()) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGTERM)
	select {
	case <-done:
	case <-time.After(grace):
		_ = syscall.Kill(-pid, syscall.SIGKILL)
		if cgKill != nil {
			cgKill()
		}
	}
}

// classifyExit maps the reaped process state and the recorded kill reason
// onto the exit classification.
func classifyExit(state *os.ProcessState, reason string) result.ExitClassification {
	switch reason {
	case killReasonTimeout:
		return result.TimedOut()
	case killReasonOutput, killReasonCancelled, killReasonRequested:
		return result.Killed()
	}
	if state == nil {
		return result.NormalExit(-1)
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return result.Signalled(ws.Signal().String())
	}
	return result.NormalExit(state.ExitCode())
}

// cpuTimeMs reads user+system CPU time from the reaped child's rusage.
func cpuTimeMs(state *os.ProcessState) int64 {
	if state == nil {
		return 0
	}
	usage, ok := state.SysUsage().(*syscall.Rusage)
	if !ok {
		return 0
	}
	user := time.Duration(usage.Utime.Nano())
	sys := time.Duration(usage.Stime.Nano())
	return (user + sys).Milliseconds()
}

// helperEnv is the environment of the helper process itself, before it
// execs the target. Nothing from the caller's environment may reach the
// helper's own dynamic loader.
func helperEnv() []string {
	return []string{"PATH=/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin"}
}
