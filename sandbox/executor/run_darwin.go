//go:build darwin

package executor

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"agentcage/pkg/errors"
	"agentcage/sandbox/isolation"
	"agentcage/sandbox/pty"
	"agentcage/sandbox/result"
)

func (e *CommandExecutor) run(ctx context.Context, ec ExecutionContext, plan *isolation.Plan, env map[string]string) (result.ExecutionOutput, error) {
	helper, err := exec.LookPath(e.cfg.HelperPath)
	if err != nil {
		return result.ExecutionOutput{}, errors.Wrapf(err, errors.HelperNotFound, "sandbox helper %s", e.cfg.HelperPath)
	}

	command, args := ec.Command, ec.Args

	// seatbelt confinement wraps the command itself; the helper still owns
	// rlimits and the environment scrub
	if plan.SeatbeltProfile != "" {
		f, err := os.CreateTemp("", "agentcage-*.sb")
		if err != nil {
			return result.ExecutionOutput{}, errors.Wrap(err, errors.SetupFailed)
		}
		if _, err := f.WriteString(plan.SeatbeltProfile); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
			return result.ExecutionOutput{}, errors.Wrap(err, errors.SetupFailed)
		}
		_ = f.Close()
		defer os.Remove(f.Name())

		args = append([]string{"-f", f.Name(), command}, ec.Args...)
		command = "/usr/bin/sandbox-exec"
	}

	req := initRequest{
		Command: command,
		Args:    args,
		Cwd:     ec.Cwd,
		Env:     env,
		Rlimits: rlimitsFrom(ec.Profile.Limits),
	}
	reqFile, err := requestPipe(req)
	if err != nil {
		return result.ExecutionOutput{}, err
	}
	defer reqFile.Close()

	stdoutBuf, stderrBuf, capped := newCaptureBuffers(int64(ec.Profile.Limits.OutputSizeBytes))

	cmd := exec.Command(helper)
	cmd.Env = helperEnv()
	cmd.ExtraFiles = []*os.File{reqFile}

	attr := &syscall.SysProcAttr{Setpgid: true}

	var session *pty.Session
	if ec.Pty != nil {
		session, err = pty.Open(*ec.Pty)
		if err != nil {
			return result.ExecutionOutput{}, err
		}
		defer session.Close()
		tty := session.Tty()
		cmd.Stdin, cmd.Stdout, cmd.Stderr = tty, tty, tty
		attr.Setpgid = false
		attr.Setsid = true
		attr.Setctty = true
		attr.Ctty = 0
	} else {
		cmd.Stdout = stdoutBuf
		cmd.Stderr = stderrBuf
	}
	cmd.SysProcAttr = attr

	h := &running{profile: ec.Profile.Name, killCh: make(chan string, 1)}
	if err := e.register(ec.ExecutionID, h); err != nil {
		return result.ExecutionOutput{}, err
	}
	defer e.unregister(ec.ExecutionID)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return result.ExecutionOutput{}, errors.Wrapf(err, errors.SpawnFailed, "start helper %s", e.cfg.HelperPath)
	}
	h.pid = cmd.Process.Pid

	if session != nil {
		_ = session.CloseTty()
	}

	done := make(chan struct{})
	go e.supervise(ctx, h, wallLimit(ec), capped, done, nil)

	var copyDone chan struct{}
	if session != nil {
		copyDone = make(chan struct{})
		go func() {
			defer close(copyDone)
			buf := make([]byte, 4096)
			for {
				n, rerr := session.Read(buf)
				if n > 0 {
					_, _ = stdoutBuf.Write(buf[:n])
				}
				if rerr != nil {
					return
				}
			}
		}()
	}

	_ = cmd.Wait()
	close(done)
	if session != nil {
		_ = session.Close()
		<-copyDone
	}
	duration := time.Since(start)
	reason := h.killReason()

	if reason == "" && cmd.ProcessState != nil && cmd.ProcessState.ExitCode() == helperSetupExitCode {
		msg := strings.TrimSpace(string(stderrBuf.Bytes()))
		if msg == "" {
			msg = strings.TrimSpace(string(stdoutBuf.Bytes()))
		}
		return result.ExecutionOutput{}, errors.Newf(errors.SetupFailed, "sandbox setup failed: %s", msg).
			WithDetail("execution_id", ec.ExecutionID)
	}

	var peakKB int64
	if state := cmd.ProcessState; state != nil {
		if usage, ok := state.SysUsage().(*syscall.Rusage); ok {
			// darwin reports maxrss in bytes
			peakKB = usage.Maxrss / 1024
		}
	}
	usage := &result.UsageSnapshot{
		CPUTimeMs:    cpuTimeMs(cmd.ProcessState),
		PeakMemoryKB: peakKB,
	}

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
