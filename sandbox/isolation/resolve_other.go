//go:build !linux && !darwin

package isolation

import (
	"runtime"

	"agentcage/pkg/errors"
	"agentcage/sandbox/profile"
)

// Resolve on unsupported platforms provides no layers at all. Every enabled
// layer becomes a weakening event, or a hard failure when mandatory; the
// executor still enforces rlimits and supervision.
func Resolve(p profile.SandboxProfile) (*Plan, error) {
	plan := &Plan{}
	for _, l := range []struct {
		policy profile.LayerPolicy
		layer  string
	}{
		{p.Isolation.Seccomp, LayerSeccomp},
		{p.Isolation.Landlock, LayerLandlock},
		{p.Isolation.Namespaces, LayerNamespaces},
		{p.Isolation.Capabilities, LayerCapabilities},
		{p.Isolation.Cgroup, LayerCgroup},
		{p.Isolation.Seatbelt, LayerSeatbelt},
	} {
		if !l.policy.Enabled {
			continue
		}
		if l.policy.Mandatory {
			return nil, errors.Newf(errors.UnsupportedPlatform,
				"mandatory isolation layer %s unavailable on %s", l.layer, runtime.GOOS).
				WithDetail("layer", l.layer)
		}
		plan.weaken(l.layer, "not available on "+runtime.GOOS)
	}
	return plan, nil
}
