//go:build darwin

package isolation

import (
	"os"

	"agentcage/pkg/errors"
	"agentcage/sandbox/profile"
)

const sandboxExecPath = "/usr/bin/sandbox-exec"

// Resolve builds the darwin enforcement plan. Filesystem and network policy
// translate into one seatbelt profile; the Linux-native layers have no
// darwin mechanism and degrade or fail according to their flags.
func Resolve(p profile.SandboxProfile) (*Plan, error) {
	plan := &Plan{}
	iso := p.Isolation

	for _, missing := range []struct {
		policy profile.LayerPolicy
		layer  string
	}{
		{iso.Seccomp, LayerSeccomp},
		{iso.Landlock, LayerLandlock},
		{iso.Namespaces, LayerNamespaces},
		{iso.Capabilities, LayerCapabilities},
		{iso.Cgroup, LayerCgroup},
	} {
		if !missing.policy.Enabled {
			continue
		}
		if missing.policy.Mandatory {
			return nil, errors.Newf(errors.UnsupportedPlatform,
				"mandatory isolation layer %s unavailable on darwin", missing.layer).
				WithDetail("layer", missing.layer)
		}
		plan.weaken(missing.layer, "not available on darwin")
	}

	if iso.Seatbelt.Enabled {
		if sandboxExecAvailable() {
			plan.SeatbeltProfile = GenerateSeatbeltProfile(p)
		} else if iso.Seatbelt.Mandatory {
			return nil, errors.New(errors.UnsupportedPlatform).
				WithMessage("sandbox-exec not found").
				WithDetail("layer", LayerSeatbelt)
		} else {
			plan.weaken(LayerSeatbelt, "sandbox-exec not found")
		}
	}

	return plan, nil
}

func sandboxExecAvailable() bool {
	_, err := os.Stat(sandboxExecPath)
	return err == nil
}
