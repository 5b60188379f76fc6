package profile

import "testing"

func TestMinimalAllowlistCoversExec(t *testing.T) {
	allowed := make(map[string]bool)
	for _, name := range MinimalSyscalls().Allowed {
		allowed[name] = true
	}
	// The seccomp filter is armed before the child image is exec'd, so the
	// allowlist has to cover exec itself and the dynamic loader's work on
	// the way to main, or every command dies with SIGSYS before it starts.
	for _, name := range []string{
		"execve", "execveat",
		"openat", "read", "pread64", "mmap", "mprotect", "close",
		"readlink", "readlinkat", "fcntl", "newfstatat", "access",
		"brk", "arch_prctl", "prlimit64", "set_tid_address",
		"exit_group",
	} {
		if !allowed[name] {
			t.Errorf("minimal allowlist missing %q", name)
		}
	}
}

func TestSyscallRulesEnabled(t *testing.T) {
	if !MinimalSyscalls().Enabled() {
		t.Error("minimal rules should be enabled")
	}
	if !StandardSyscalls().Enabled() {
		t.Error("standard rules should be enabled")
	}
	if PermissiveSyscalls().Enabled() {
		t.Error("permissive rules should be disabled")
	}
	if (SyscallRules{Mode: SyscallAllowlist}).Enabled() {
		t.Error("allowlist with no entries should not be enabled")
	}
}
