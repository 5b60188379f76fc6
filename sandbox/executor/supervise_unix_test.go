//go:build linux || darwin

package executor

import (
	"os/exec"
	"syscall"
	"testing"
	"time"

	"agentcage/sandbox/result"
)

func TestClassifyExitReasons(t *testing.T) {
	tests := []struct {
		reason string
		kind   result.ExitKind
	}{
		{killReasonTimeout, result.ExitTimedOut},
		{killReasonOutput, result.ExitKilled},
		{killReasonCancelled, result.ExitKilled},
		{killReasonRequested, result.ExitKilled},
	}
	for _, tc := range tests {
		exit := classifyExit(nil, tc.reason)
		if exit.Kind != tc.kind {
			t.Errorf("reason %q: kind = %q, want %q", tc.reason, exit.Kind, tc.kind)
		}
	}

	if exit := classifyExit(nil, ""); exit.Kind != result.ExitNormal || exit.Code != -1 {
		t.Errorf("nil state: %+v", exit)
	}
}

func TestClassifyExitFromProcessState(t *testing.T) {
	cmd := exec.Command("/bin/sh", "-c", "exit 3")
	_ = cmd.Run()
	exit := classifyExit(cmd.ProcessState, "")
	if exit.Kind != result.ExitNormal || exit.Code != 3 {
		t.Fatalf("got %+v, want exited code 3", exit)
	}
	if exit.Success() {
		t.Fatal("exit 3 must not be a success")
	}

	cmd = exec.Command("/bin/true")
	_ = cmd.Run()
	exit = classifyExit(cmd.ProcessState, "")
	if !exit.Success() {
		t.Fatalf("got %+v, want success", exit)
	}
}

func TestClassifyExitSignalled(t *testing.T) {
	cmd := exec.Command("/bin/sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := cmd.Process.Signal(syscall.SIGKILL); err != nil {
		t.Fatalf("signal: %v", err)
	}
	_ = cmd.Wait()

	exit := classifyExit(cmd.ProcessState, "")
	if exit.Kind != result.ExitSignalled {
		t.Fatalf("kind = %q, want %q", exit.Kind, result.ExitSignalled)
	}
	if exit.Signal == "" {
		t.Fatal("signal name missing")
	}
}

func TestCPUTimeFromRusage(t *testing.T) {
	if got := cpuTimeMs(nil); got != 0 {
		t.Fatalf("nil state cpu = %d", got)
	}

	cmd := exec.Command("/bin/true")
	_ = cmd.Run()
	if got := cpuTimeMs(cmd.ProcessState); got < 0 {
		t.Fatalf("cpu = %d", got)
	}
}

func TestTerminateGroupNoPid(t *testing.T) {
	done := make(chan struct{})
	close(done)
	// must be a no-op before the child pid is known
	terminateGroup(0, time.Millisecond, done, nil)
	terminateGroup(-1, time.Millisecond, done, nil)
}

func TestHelperEnvIsClosed(t *testing.T) {
	env := helperEnv()
	if len(env) != 1 {
		t.Fatalf("helper env = %v", env)
	}
}
