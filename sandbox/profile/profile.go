// Package profile defines sandbox profiles: resource limits, filesystem and
// environment policy, syscall rules, and isolation layer selection.
package profile

import "agentcage/sandbox/limits"

// LayerPolicy controls one isolation layer. A mandatory layer that the
// platform cannot provide fails the execution; a best-effort layer that is
// unavailable is skipped and recorded as a policy weakening.
type LayerPolicy struct {
	Enabled   bool `yaml:"enabled"`
	Mandatory bool `yaml:"mandatory"`
}

// Isolation selects which layers to arm around an execution.
type Isolation struct {
	Seccomp      LayerPolicy `yaml:"seccomp"`
	Landlock     LayerPolicy `yaml:"landlock"`
	Namespaces   LayerPolicy `yaml:"namespaces"`
	Capabilities LayerPolicy `yaml:"capabilities"`
	Cgroup       LayerPolicy `yaml:"cgroup"`
	Seatbelt     LayerPolicy `yaml:"seatbelt"`
}

// SandboxProfile bundles everything the executor needs to confine one
// command. Profiles are built once and shared read-only across concurrent
// executions; nothing mutates a profile after Build.
type SandboxProfile struct {
	Name        string                `yaml:"name"`
	Limits      limits.ResourceLimits `yaml:"limits"`
	Filesystem  FilesystemRules       `yaml:"filesystem"`
	Network     NetworkRules          `yaml:"network"`
	Syscalls    SyscallRules          `yaml:"syscalls"`
	Environment EnvironmentRules      `yaml:"environment"`
	Isolation   Isolation             `yaml:"isolation"`
}

// Minimal is the most restrictive profile: allowlist syscalls, read-only
// filesystem, no network, full namespace isolation. Every layer except
// seatbelt is mandatory; running a minimal-profile command with weaker
// confinement than asked for is worse than not running it.
func Minimal() SandboxProfile {
	return SandboxProfile{
		Name:        "minimal",
		Limits:      limits.Minimal(),
		Filesystem:  ReadOnlyRules(),
		Network:     DisabledNetwork(),
		Syscalls:    MinimalSyscalls(),
		Environment: MinimalEnv(),
		Isolation: Isolation{
			Seccomp:      LayerPolicy{Enabled: true, Mandatory: true},
			Landlock:     LayerPolicy{Enabled: true},
			Namespaces:   LayerPolicy{Enabled: true, Mandatory: true},
			Capabilities: LayerPolicy{Enabled: true, Mandatory: true},
			Cgroup:       LayerPolicy{Enabled: true},
			Seatbelt:     LayerPolicy{Enabled: true},
		},
	}
}

// Standard is the default profile for agent-issued commands: blocklist
// syscalls, scratch space in /tmp, loopback-only network, best-effort layers.
func Standard() SandboxProfile {
	return SandboxProfile{
		Name:        "standard",
		Limits:      limits.Default().WithNetwork(true),
		Filesystem:  StandardRules(),
		Network:     LocalhostNetwork(),
		Syscalls:    StandardSyscalls(),
		Environment: StandardEnv(),
		Isolation: Isolation{
			Seccomp:      LayerPolicy{Enabled: true},
			Landlock:     LayerPolicy{Enabled: true},
			Capabilities: LayerPolicy{Enabled: true},
			Cgroup:       LayerPolicy{Enabled: true},
			Seatbelt:     LayerPolicy{Enabled: true},
		},
	}
}

// Relaxed is for trusted workloads such as builds: no syscall filter,
// workspace writes, open network, capabilities kept.
func Relaxed() SandboxProfile {
	return SandboxProfile{
		Name:        "relaxed",
		Limits:      limits.Relaxed(),
		Filesystem:  WorkspaceRules(""),
		Network:     EnabledNetwork(),
		Syscalls:    PermissiveSyscalls(),
		Environment: PermissiveEnv(),
		Isolation: Isolation{
			Cgroup: LayerPolicy{Enabled: true},
		},
	}
}

// ByName resolves a preset profile name.
func ByName(name string) (SandboxProfile, bool) {
	switch name {
	case "minimal":
		return Minimal(), true
	case "standard", "default", "":
		return Standard(), true
	case "relaxed":
		return Relaxed(), true
	}
	return SandboxProfile{}, false
}
