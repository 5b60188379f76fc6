// Package isolation resolves a profile's declarative isolation policy into
// the enforcement mechanisms this host can actually provide. Resolution is
// platform-specific: seccomp, landlock, namespaces and capability dropping on
// Linux, a seatbelt profile on macOS, and a recorded no-op elsewhere. A
// mandatory layer the host cannot provide fails resolution; a best-effort one
// degrades into a weakening event on the plan.
package isolation

import (
	"agentcage/sandbox/profile"
	"agentcage/sandbox/result"
)

// Layer names as they appear in errors, weakening events, and metrics.
const (
	LayerSeccomp      = "seccomp"
	LayerLandlock     = "landlock"
	LayerNamespaces   = "namespaces"
	LayerCapabilities = "capabilities"
	LayerCgroup       = "cgroup"
	LayerSeatbelt     = "seatbelt"
	LayerNetwork      = "network"
)

// SeccompSpec is armed inside the child, after every other layer, so the
// filter cannot interfere with its own setup.
type SeccompSpec struct {
	Mode    string   `json:"mode"`
	Allowed []string `json:"allowed,omitempty"`
	Blocked []string `json:"blocked,omitempty"`
}

// LandlockSpec restricts filesystem access inside the child. Landlock
// expresses policy as an allow set; deny rules that punch holes inside an
// allowed prefix are enforced by profile evaluation, not here.
type LandlockSpec struct {
	ReadPaths  []string `json:"read_paths,omitempty"`
	WritePaths []string `json:"write_paths,omitempty"`
	ExecPaths  []string `json:"exec_paths,omitempty"`
}

// NamespaceSpec is armed at spawn time through clone flags.
type NamespaceSpec struct {
	CloneFlags uintptr
}

// Plan is the resolved isolation strategy for one execution on this host.
// Nil fields mean the layer is off, either by profile or by degradation.
type Plan struct {
	Seccomp    *SeccompSpec
	Landlock   *LandlockSpec
	DropCaps   bool
	Namespaces *NamespaceSpec
	UseCgroup  bool

	// SeatbeltProfile is the generated profile text on darwin; the executor
	// writes it to a file and rewrites the command into a sandbox-exec
	// invocation.
	SeatbeltProfile string

	Weakenings []result.WeakeningEvent
}

// weaken records a degraded layer on the plan.
func (p *Plan) weaken(layer, reason string) {
	p.Weakenings = append(p.Weakenings, result.WeakeningEvent{Layer: layer, Reason: reason})
}

// seccompSpec translates profile syscall rules; nil when filtering is off.
func seccompSpec(rules profile.SyscallRules) *SeccompSpec {
	if !rules.Enabled() {
		return nil
	}
	return &SeccompSpec{
		Mode:    string(rules.Mode),
		Allowed: rules.Allowed,
		Blocked: rules.Blocked,
	}
}

// landlockSpec translates filesystem rules into landlock allow sets.
func landlockSpec(rules profile.FilesystemRules) *LandlockSpec {
	spec := &LandlockSpec{
		ReadPaths:  rules.AllowedFor(profile.PermRead),
		WritePaths: rules.AllowedFor(profile.PermWrite),
		ExecPaths:  rules.AllowedFor(profile.PermExec),
	}
	if len(spec.ReadPaths) == 0 && len(spec.WritePaths) == 0 && len(spec.ExecPaths) == 0 {
		return nil
	}
	return spec
}
