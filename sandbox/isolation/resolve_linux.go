//go:build linux

package isolation

import (
	"os"
	"strings"

	llsys "github.com/landlock-lsm/go-landlock/landlock/syscall"
	"golang.org/x/sys/unix"

	"agentcage/pkg/errors"
	"agentcage/sandbox/profile"
)

// Resolve builds the Linux enforcement plan: seccomp and landlock armed in
// the helper, namespaces at spawn, cgroup limits from the supervisor. The
// seatbelt layer is the macOS counterpart of these and is not consulted here.
func Resolve(p profile.SandboxProfile) (*Plan, error) {
	plan := &Plan{}
	iso := p.Isolation

	if iso.Seccomp.Enabled {
		switch {
		case seccompSupported():
			plan.Seccomp = seccompSpec(p.Syscalls)
		case iso.Seccomp.Mandatory:
			return nil, unsupported(LayerSeccomp, "kernel lacks seccomp filter support")
		default:
			plan.weaken(LayerSeccomp, "kernel lacks seccomp filter support")
		}
	}

	if iso.Landlock.Enabled {
		switch {
		case landlockSupported():
			plan.Landlock = landlockSpec(p.Filesystem)
		case iso.Landlock.Mandatory:
			return nil, unsupported(LayerLandlock, "kernel lacks landlock support")
		default:
			plan.weaken(LayerLandlock, "kernel lacks landlock support")
		}
	}

	if iso.Namespaces.Enabled {
		switch {
		case namespacesSupported():
			flags := uintptr(unix.CLONE_NEWUSER | unix.CLONE_NEWNS | unix.CLONE_NEWPID |
				unix.CLONE_NEWUTS | unix.CLONE_NEWIPC)
			if !p.Network.Enabled {
				flags |= unix.CLONE_NEWNET
			}
			plan.Namespaces = &NamespaceSpec{CloneFlags: flags}
		case iso.Namespaces.Mandatory:
			return nil, unsupported(LayerNamespaces, "unprivileged user namespaces unavailable")
		default:
			plan.weaken(LayerNamespaces, "unprivileged user namespaces unavailable")
		}
	}

	// Linux confines the network at namespace granularity only: all or
	// nothing. A localhost-only policy degrades to an open network here and
	// is recorded as such; per-host filtering is the seatbelt generator's
	// territory on darwin.
	if p.Network.Enabled && p.Network.LocalhostOnly {
		plan.weaken(LayerNetwork, "localhost-only network cannot be enforced, outbound traffic unrestricted")
	}

	if iso.Capabilities.Enabled {
		// prctl-based capability dropping needs no kernel probe
		plan.DropCaps = true
	}

	if iso.Cgroup.Enabled {
		switch {
		case cgroupSupported():
			plan.UseCgroup = true
		case iso.Cgroup.Mandatory:
			return nil, unsupported(LayerCgroup, "cgroup v2 not mounted")
		default:
			plan.weaken(LayerCgroup, "cgroup v2 not mounted")
		}
	}

	return plan, nil
}

func unsupported(layer, reason string) error {
	return errors.Newf(errors.UnsupportedPlatform, "mandatory isolation layer %s unavailable: %s", layer, reason).
		WithDetail("layer", layer)
}

func seccompSupported() bool {
	_, err := os.Stat("/proc/sys/kernel/seccomp")
	return err == nil
}

func landlockSupported() bool {
	v, err := llsys.LandlockGetABIVersion()
	return err == nil && v >= 1
}

func namespacesSupported() bool {
	if _, err := os.Stat("/proc/self/ns/user"); err != nil {
		return false
	}
	// some distributions gate unprivileged user namespaces behind a sysctl
	if os.Geteuid() != 0 {
		if data, err := os.ReadFile("/proc/sys/kernel/unprivileged_userns_clone"); err == nil {
			if strings.TrimSpace(string(data)) == "0" {
				return false
			}
		}
	}
	return true
}

func cgroupSupported() bool {
	_, err := os.Stat("/sys/fs/cgroup/cgroup.controllers")
	return err == nil
}
