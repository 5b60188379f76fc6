// Package sandbox confines agent-issued commands. A profile declares the
// resource limits and isolation layers an execution must run under; the
// executor arms whichever layers the platform provides, supervises the
// child, and reports how it ended together with any policy weakenings.
//
// Typical use:
//
//	exec := executor.New(executor.Config{}, nil)
//	out, err := exec.Execute(ctx, executor.ExecutionContext{
//		ExecutionID: id,
//		Command:     "/usr/bin/python3",
//		Args:        []string{"script.py"},
//		Cwd:         workspace,
//		Profile:     profile.Standard(),
//	})
package sandbox

import (
	"context"

	"agentcage/sandbox/executor"
	"agentcage/sandbox/result"
)

// Service is the execution surface exposed to the rest of the platform.
type Service interface {
	// Execute runs one command to completion under its profile. Supervisory
	// kills come back in the result; an error means the command never ran.
	Execute(ctx context.Context, ec executor.ExecutionContext) (result.ExecutionOutput, error)

	// Kill terminates a running execution by id.
	Kill(ctx context.Context, executionID string) error
}

var _ Service = (*executor.CommandExecutor)(nil)
