package profile

import (
	"strings"

	"agentcage/pkg/errors"
	"agentcage/sandbox/limits"
)

// ProfileBuilder assembles a SandboxProfile. Build validates the result;
// a profile obtained from Build is ready for the executor and must not be
// mutated afterwards.
type ProfileBuilder struct {
	p SandboxProfile
}

// NewBuilder starts from the standard profile under the given name.
func NewBuilder(name string) *ProfileBuilder {
	p := Standard()
	p.Name = name
	return &ProfileBuilder{p: p}
}

// NewBuilderFrom starts from a named preset; unknown presets start from
// standard.
func NewBuilderFrom(preset, name string) *ProfileBuilder {
	p, ok := ByName(preset)
	if !ok {
		p = Standard()
	}
	if name != "" {
		p.Name = name
	}
	return &ProfileBuilder{p: p}
}

// Limits replaces the resource limits.
func (b *ProfileBuilder) Limits(l limits.ResourceLimits) *ProfileBuilder {
	b.p.Limits = l
	return b
}

// Filesystem replaces the filesystem rules.
func (b *ProfileBuilder) Filesystem(f FilesystemRules) *ProfileBuilder {
	b.p.Filesystem = f
	return b
}

// AllowPath appends an allow rule.
func (b *ProfileBuilder) AllowPath(prefix string, perms Permission) *ProfileBuilder {
	b.p.Filesystem = b.p.Filesystem.WithRule(prefix, true, perms)
	return b
}

// DenyPath appends a deny rule.
func (b *ProfileBuilder) DenyPath(prefix string, perms Permission) *ProfileBuilder {
	b.p.Filesystem = b.p.Filesystem.WithRule(prefix, false, perms)
	return b
}

// Network replaces the network rules and keeps the limit flag in sync.
func (b *ProfileBuilder) Network(n NetworkRules) *ProfileBuilder {
	b.p.Network = n
	b.p.Limits.NetworkEnabled = n.Enabled
	return b
}

// Syscalls replaces the syscall rules.
func (b *ProfileBuilder) Syscalls(s SyscallRules) *ProfileBuilder {
	b.p.Syscalls = s
	return b
}

// Environment replaces the environment rules.
func (b *ProfileBuilder) Environment(e EnvironmentRules) *ProfileBuilder {
	b.p.Environment = e
	return b
}

// Isolation replaces the isolation layer selection.
func (b *ProfileBuilder) Isolation(i Isolation) *ProfileBuilder {
	b.p.Isolation = i
	return b
}

// Build validates and returns the profile.
func (b *ProfileBuilder) Build() (SandboxProfile, error) {
	if err := b.p.Validate(); err != nil {
		return SandboxProfile{}, err
	}
	return b.p, nil
}

// Validate checks the profile for contradictions and holes. Executors call
// this once up front so a broken profile fails before anything is spawned.
func (p SandboxProfile) Validate() error {
	if p.Name == "" {
		return errors.ProfileError("name", "must not be empty")
	}
	if err := p.Limits.Validate(); err != nil {
		return errors.Wrap(err, errors.InvalidProfile).
			WithDetail("profile", p.Name)
	}
	// Both flags feed enforcement: limits drive accounting, network rules
	// drive the namespace and seatbelt layers. They must agree.
	if p.Network.Enabled != p.Limits.NetworkEnabled {
		return errors.ProfileError("network", "network rules and limits disagree on network access")
	}
	for i, r := range p.Filesystem.Rules {
		if r.Prefix == "" {
			return errors.New(errors.InvalidPathRule).
				WithDetail("profile", p.Name).
				WithDetail("rule_index", i).
				WithMessage("filesystem rule has empty path prefix")
		}
		if !strings.HasPrefix(r.Prefix, "/") {
			return errors.Newf(errors.InvalidPathRule, "filesystem rule path %q is not absolute", r.Prefix).
				WithDetail("profile", p.Name).
				WithDetail("rule_index", i)
		}
		if r.Perms == 0 {
			return errors.Newf(errors.InvalidPathRule, "filesystem rule %q has empty permission set", r.Prefix).
				WithDetail("profile", p.Name).
				WithDetail("rule_index", i)
		}
	}
	switch p.Syscalls.Mode {
	case SyscallDisabled, SyscallBlocklist, SyscallAllowlist, "":
	default:
		return errors.Newf(errors.InvalidProfile, "unknown syscall mode %q", p.Syscalls.Mode).
			WithDetail("profile", p.Name)
	}
	for k := range p.Environment.Set {
		if k == "" {
			return errors.New(errors.InvalidEnvRule).
				WithDetail("profile", p.Name).
				WithMessage("environment rule sets an empty variable name")
		}
	}
	return nil
}
