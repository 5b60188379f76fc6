//go:build linux

// sandbox-init is the pre-exec helper. The executor spawns it with a JSON
// request on fd 3; it arms every in-process isolation layer inside the child
// and then execs the target, so no target instruction runs unconfined.
//
// Layer order: rlimits, landlock, capability drop, environment scrub, and
// seccomp last, so the filter cannot interfere with its own setup.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/landlock-lsm/go-landlock/landlock"
	seccomp "github.com/seccomp/libseccomp-golang"
	"golang.org/x/sys/unix"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "sandbox-init: "+err.Error())
		os.Exit(125)
	}
}

func run() error {
	req, err := readRequest()
	if err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}

	if req.Namespaced {
		// inside a fresh mount namespace nothing may propagate back out
		if err := unix.Mount("", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
			return fmt.Errorf("make mount private: %w", err)
		}
	}

	if err := os.Chdir(req.Cwd); err != nil {
		return fmt.Errorf("chdir workdir: %w", err)
	}

	if err := applyRlimits(req.Rlimits); err != nil {
		return err
	}

	if req.Landlock != nil {
		if err := applyLandlock(req.Landlock); err != nil {
			return err
		}
	}

	if req.DropCaps {
		if err := dropCapabilities(); err != nil {
			return err
		}
	}

	env := buildEnv(req.Env)

	if req.Seccomp != nil {
		if err := applySeccomp(req.Seccomp); err != nil {
			return err
		}
	}

	cmdPath, err := exec.LookPath(req.Command)
	if err != nil {
		return fmt.Errorf("resolve command: %w", err)
	}
	argv := append([]string{req.Command}, req.Args...)
	return unix.Exec(cmdPath, argv, env)
}

func applyLandlock(spec *landlockSpec) error {
	var rules []landlock.Rule
	// RODirs carries execute access, so exec prefixes fold into the read set
	ro := append(append([]string{}, spec.ReadPaths...), spec.ExecPaths...)
	if len(ro) > 0 {
		rules = append(rules, landlock.RODirs(ro...).IgnoreIfMissing())
	}
	if len(spec.WritePaths) > 0 {
		rules = append(rules, landlock.RWDirs(spec.WritePaths...).IgnoreIfMissing())
	}
	if len(rules) == 0 {
		return nil
	}
	if err := landlock.V5.BestEffort().RestrictPaths(rules...); err != nil {
		return fmt.Errorf("landlock restrict: %w", err)
	}
	return nil
}

func dropCapabilities() error {
	for c := uintptr(0); c <= unix.CAP_LAST_CAP; c++ {
		if err := unix.Prctl(unix.PR_CAPBSET_DROP, c, 0, 0, 0); err != nil {
			// past the last cap the kernel knows
			if err == unix.EINVAL {
				break
			}
			return fmt.Errorf("drop bounding cap %d: %w", c, err)
		}
	}
	if err := unix.Prctl(unix.PR_CAP_AMBIENT, unix.PR_CAP_AMBIENT_CLEAR_ALL, 0, 0, 0); err != nil {
		return fmt.Errorf("clear ambient caps: %w", err)
	}
	return nil
}

func applySeccomp(spec *seccompSpec) error {
	var defaultAction, ruleAction seccomp.ScmpAction
	var names []string
	switch spec.Mode {
	case "blocklist":
		defaultAction, ruleAction = seccomp.ActAllow, seccomp.ActKillProcess
		names = spec.Blocked
	case "allowlist":
		defaultAction, ruleAction = seccomp.ActKillProcess, seccomp.ActAllow
		names = spec.Allowed
	case "disabled", "":
		return nil
	default:
		return fmt.Errorf("unsupported seccomp mode: %s", spec.Mode)
	}

	filter, err := seccomp.NewFilter(defaultAction)
	if err != nil {
		return fmt.Errorf("create seccomp filter: %w", err)
	}
	for _, name := range names {
		sc, err := seccomp.GetSyscallFromName(name)
		if err != nil {
			// unknown on this architecture, so it cannot be invoked either
			continue
		}
		if err := filter.AddRule(sc, ruleAction); err != nil {
			return fmt.Errorf("add seccomp rule %s: %w", name, err)
		}
	}
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("set no new privs: %w", err)
	}
	if err := filter.Load(); err != nil {
		return fmt.Errorf("load seccomp filter: %w", err)
	}
	return nil
}
