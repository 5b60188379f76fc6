//go:build !linux && !darwin

package executor

import (
	"context"
	"os"
	"os/exec"
	"time"

	"agentcage/pkg/errors"
	"agentcage/sandbox/isolation"
	"agentcage/sandbox/result"
)

// No kernel isolation is available here. The command runs directly with
// resource supervision only; every configured layer has already been
// recorded as a weakening by the platform resolver.
func (e *CommandExecutor) run(ctx context.Context, ec ExecutionContext, plan *isolation.Plan, env map[string]string) (result.ExecutionOutput, error) {
	if ec.Pty != nil {
		return result.ExecutionOutput{}, errors.New(errors.PtyOpenFailed).
			WithMessage("pty sessions are not supported on this platform")
	}

	stdoutBuf, stderrBuf, capped := newCaptureBuffers(int64(ec.Profile.Limits.OutputSizeBytes))

	cmd := exec.Command(ec.Command, ec.Args...)
	cmd.Dir = ec.Cwd
	cmd.Env = envSlice(env)
	cmd.Stdout = stdoutBuf
	cmd.Stderr = stderrBuf

	h := &running{profile: ec.Profile.Name, killCh: make(chan string, 1)}
	if err := e.register(ec.ExecutionID, h); err != nil {
		return result.ExecutionOutput{}, err
	}
	defer e.unregister(ec.ExecutionID)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return result.ExecutionOutput{}, errors.Wrapf(err, errors.SpawnFailed, "start %s", ec.Command)
	}
	h.pid = cmd.Process.Pid

	done := make(chan struct{})
	go e.superviseDirect(ctx, h, cmd, wallLimit(ec), capped, done)

	_ = cmd.Wait()
	close(done)
	duration := time.Since(start)
	reason := h.killReason()

	var cpuMs int64
	if state := cmd.ProcessState; state != nil {
		cpuMs = (state.UserTime() + state.SystemTime()).Milliseconds()
	}
	usage := &result.UsageSnapshot{CPUTimeMs: cpuMs}

	return result.ExecutionOutput{
		Exit:            classifyExit(cmd.ProcessState, reason),
		Stdout:          stdoutBuf.Bytes(),
		Stderr:          stderrBuf.Bytes(),
		StdoutTruncated: stdoutBuf.Truncated(),
		StderrTruncated: stderrBuf.Truncated(),
		Duration:        duration,
		Usage:           usage,
	}, nil
}

func (e *CommandExecutor) superviseDirect(ctx context.Context, h *running, cmd *exec.Cmd, wall time.Duration, capped <-chan struct{}, done <-chan struct{}) {
	timer := time.NewTimer(wall)
	defer timer.Stop()

	var reason string
	select {
	case <-done:
		return
	case <-ctx.Done():
		reason = killReasonCancelled
	case <-timer.C:
		reason = killReasonTimeout
	case <-capped:
		reason = killReasonOutput
	case reason = <-h.killCh:
	}
	h.setReason(reason)
	e.metrics.ObserveKill(ctx, h.profile, reason)
	_ = cmd.Process.Kill()
}

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
	return result.NormalExit(state.ExitCode())
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
