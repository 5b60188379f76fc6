package profile

// SyscallMode selects how the seccomp layer interprets the rule sets.
type SyscallMode string

const (
	// SyscallDisabled applies no filter.
	SyscallDisabled SyscallMode = "disabled"
	// SyscallBlocklist kills the process on any syscall in Blocked.
	SyscallBlocklist SyscallMode = "blocklist"
	// SyscallAllowlist kills the process on any syscall not in Allowed.
	SyscallAllowlist SyscallMode = "allowlist"
)

// SyscallRules configures the seccomp filter.
type SyscallRules struct {
	Mode    SyscallMode `yaml:"mode"`
	Allowed []string    `yaml:"allowed"`
	Blocked []string    `yaml:"blocked"`
}

// MinimalSyscalls allows only what a plain dynamically linked program needs
// to start and do basic I/O. The filter is loaded before the exec syscall,
// so exec and everything the loader does on the way to main must be here.
func MinimalSyscalls() SyscallRules {
	return SyscallRules{
		Mode: SyscallAllowlist,
		Allowed: []string{
			// exec and program startup
			"execve", "execveat",
			"brk", "arch_prctl", "prctl", "prlimit64", "rseq",
			"set_tid_address", "set_robust_list",
			"uname", "sched_getaffinity",
			// dynamic loader
			"open", "openat", "openat2", "close", "close_range",
			"stat", "fstat", "lstat", "newfstatat", "statx",
			"access", "faccessat", "faccessat2",
			"readlink", "readlinkat",
			"read", "pread64", "mmap", "mprotect", "munmap", "mremap",
			"madvise", "getrandom",
			// basic I/O
			"write", "pwrite64", "readv", "writev",
			"poll", "ppoll", "select", "pselect6",
			"lseek", "ioctl", "fcntl", "getdents64", "getcwd",
			"pipe", "pipe2", "dup", "dup2", "dup3",
			// time and sleep
			"nanosleep", "clock_nanosleep", "clock_gettime", "clock_getres",
			"gettimeofday",
			// identity
			"getpid", "getppid", "gettid",
			"getuid", "getgid", "geteuid", "getegid", "getpgrp",
			// signals and exit
			"rt_sigaction", "rt_sigprocmask", "rt_sigreturn",
			"sigaltstack", "restart_syscall", "tgkill",
			"futex", "sched_yield",
			"getrusage", "wait4",
			"exit", "exit_group",
		},
	}
}

// StandardSyscalls blocks the syscalls a confined command never legitimately
// needs: tracing other processes, loading kernel modules, rearranging mounts,
// and adjusting system state.
func StandardSyscalls() SyscallRules {
	return SyscallRules{
		Mode: SyscallBlocklist,
		Blocked: []string{
			"ptrace", "process_vm_readv", "process_vm_writev",
			"kexec_load", "kexec_file_load",
			"init_module", "finit_module", "delete_module",
			"reboot", "swapon", "swapoff",
			"mount", "umount", "umount2",
			"pivot_root", "chroot",
			"acct", "settimeofday", "adjtimex",
		},
	}
}

// PermissiveSyscalls disables filtering.
func PermissiveSyscalls() SyscallRules {
	return SyscallRules{Mode: SyscallDisabled}
}

// Enabled reports whether the rules call for installing a filter.
func (s SyscallRules) Enabled() bool {
	switch s.Mode {
	case SyscallBlocklist:
		return len(s.Blocked) > 0
	case SyscallAllowlist:
		return len(s.Allowed) > 0
	default:
		return false
	}
}
