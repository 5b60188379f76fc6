//go:build linux

package executor

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agentcage/pkg/errors"
	"agentcage/pkg/logger"
	"agentcage/sandbox/cgroup"
	"agentcage/sandbox/isolation"
	"agentcage/sandbox/pty"
	"agentcage/sandbox/result"
)

func (e *CommandExecutor) run(ctx context.Context, ec ExecutionContext, plan *isolation.Plan, env map[string]string) (result.ExecutionOutput, error) {
	helper, err := exec.LookPath(e.cfg.HelperPath)
	if err != nil {
		return result.ExecutionOutput{}, errors.Wrapf(err, errors.HelperNotFound, "sandbox helper %s", e.cfg.HelperPath)
	}

	var weakenings []result.WeakeningEvent

	var cg *cgroup.Group
	if plan.UseCgroup {
		g, err := cgroup.Create(e.cfg.CgroupRoot, ec.ExecutionID)
		if err == nil {
			err = g.ApplyLimits(ec.Profile.Limits)
		}
		if err != nil {
			g.Remove()
			if ec.Profile.Isolation.Cgroup.Mandatory {
				return result.ExecutionOutput{}, err
			}
			logger.Warn(ctx, "cgroup setup failed, continuing without",
				zap.String("execution_id", ec.ExecutionID), zap.Error(err))
			weakenings = append(weakenings, result.WeakeningEvent{
				Layer: isolation.LayerCgroup, Reason: err.Error(),
			})
			e.metrics.ObserveWeakening(ctx, ec.Profile.Name, isolation.LayerCgroup)
		} else {
			cg = g
			defer cg.Remove()
		}
	}

	req := initRequest{
		Command:    ec.Command,
		Args:       ec.Args,
		Cwd:        ec.Cwd,
		Env:        env,
		Rlimits:    rlimitsFrom(ec.Profile.Limits),
		Seccomp:    plan.Seccomp,
		Landlock:   plan.Landlock,
		DropCaps:   plan.DropCaps,
		Namespaced: plan.Namespaces != nil,
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

	attr := &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
	if plan.Namespaces != nil {
		attr.Cloneflags = plan.Namespaces.CloneFlags
		attr.GidMappingsEnableSetgroups = false
		attr.UidMappings = []syscall.SysProcIDMap{{ContainerID: 0, HostID: os.Getuid(), Size: 1}}
		attr.GidMappings = []syscall.SysProcIDMap{{ContainerID: 0, HostID: os.Getgid(), Size: 1}}
	}

	var session *pty.Session
	if ec.Pty != nil {
		session, err = pty.Open(*ec.Pty)
		if err != nil {
			return result.ExecutionOutput{}, err
		}
		defer session.Close()
		tty := session.Tty()
		cmd.Stdin, cmd.Stdout, cmd.Stderr = tty, tty, tty
		// a session leader is its own process group; Setpgid would fail
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

	// the child owns its copies now
	if session != nil {
		_ = session.CloseTty()
	}

	if cg != nil {
		if err := cg.AddProcess(cmd.Process.Pid); err != nil {
			logger.Warn(ctx, "add process to cgroup failed",
				zap.String("execution_id", ec.ExecutionID), zap.Error(err))
		}
	}

	done := make(chan struct{})
	var cgKill func()
	if cg != nil {
		cgKill = func() { _ = cg.Kill() }
	}
	go e.supervise(ctx, h, wallLimit(ec), capped, done, cgKill)

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

	usage := &result.UsageSnapshot{
		CPUTimeMs:    cpuTimeMs(cmd.ProcessState),
		PeakMemoryKB: cg.MemoryPeakKB(cmd.ProcessState),
		OomKilled:    cg.OomKilled(),
	}

	return result.ExecutionOutput{
		Exit:            classifyExit(cmd.ProcessState, reason),
		Stdout:          stdoutBuf.Bytes(),
		Stderr:          stderrBuf.Bytes(),
		StdoutTruncated: stdoutBuf.Truncated(),
		StderrTruncated: stderrBuf.Truncated(),
		Duration:        duration,
		Usage:           usage,
		Weakenings:      weakenings,
	}, nil
}
