//go:build darwin

// sandbox-init on darwin applies rlimits and the scrubbed environment, then
// execs the target. Seatbelt confinement arrives through the command itself:
// the executor rewrites it into a sandbox-exec invocation before spawn.
package main

import (
	"fmt"
	"os"
	"os/exec"

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

	if err := os.Chdir(req.Cwd); err != nil {
		return fmt.Errorf("chdir workdir: %w", err)
	}

	if err := applyRlimits(req.Rlimits); err != nil {
		return err
	}

	env := buildEnv(req.Env)

	cmdPath, err := exec.LookPath(req.Command)
	if err != nil {
		return fmt.Errorf("resolve command: %w", err)
	}
	argv := append([]string{req.Command}, req.Args...)
	return unix.Exec(cmdPath, argv, env)
}
