// Package result defines execution outcomes: exit classification, captured
// output, and resource usage.
package result

import "time"

// ExitKind discriminates how an execution ended.
type ExitKind string

const (
	// ExitNormal means the process exited on its own; Code carries the status.
	ExitNormal ExitKind = "exited"
	// ExitSignalled means the process died from a signal it did not ask for.
	ExitSignalled ExitKind = "signalled"
	// ExitTimedOut means the supervisor killed the process at the wall deadline.
	ExitTimedOut ExitKind = "timed_out"
	// ExitKilled means the supervisor killed the process for another reason:
	// caller cancellation, output cap, or an explicit Kill.
	ExitKilled ExitKind = "killed"
)

// ExitClassification describes process termination. Exactly one of the
// supplementary fields is meaningful per kind.
type ExitClassification struct {
	Kind   ExitKind `json:"kind"`
	Code   int      `json:"code,omitempty"`   // ExitNormal
	Signal string   `json:"signal,omitempty"` // ExitSignalled
}

// NormalExit classifies a plain exit.
func NormalExit(code int) ExitClassification {
	return ExitClassification{Kind: ExitNormal, Code: code}
}

// Signalled classifies death by signal.
func Signalled(signal string) ExitClassification {
	return ExitClassification{Kind: ExitSignalled, Signal: signal}
}

// TimedOut classifies a wall-deadline kill.
func TimedOut() ExitClassification {
	return ExitClassification{Kind: ExitTimedOut}
}

// Killed classifies a supervisor kill that was not a timeout.
func Killed() ExitClassification {
	return ExitClassification{Kind: ExitKilled}
}

// Success reports a clean zero exit.
func (e ExitClassification) Success() bool {
	return e.Kind == ExitNormal && e.Code == 0
}

// UsageSnapshot captures resource usage read back after the execution.
type UsageSnapshot struct {
	PeakMemoryKB int64 `json:"peak_memory_kb"`
	CPUTimeMs    int64 `json:"cpu_time_ms"`
	OomKilled    bool  `json:"oom_killed"`
}

// WeakeningEvent records an isolation layer that was requested best-effort
// but could not be armed on this platform.
type WeakeningEvent struct {
	Layer  string `json:"layer"`
	Reason string `json:"reason"`
}

// ExecutionOutput is the structured result of one sandboxed execution.
type ExecutionOutput struct {
	ExecutionID     string             `json:"execution_id"`
	Exit            ExitClassification `json:"exit"`
	Stdout          []byte             `json:"stdout"`
	Stderr          []byte             `json:"stderr"`
	StdoutTruncated bool               `json:"stdout_truncated"`
	StderrTruncated bool               `json:"stderr_truncated"`
	Duration        time.Duration      `json:"duration"`
	Usage           *UsageSnapshot     `json:"usage,omitempty"`
	Weakenings      []WeakeningEvent   `json:"weakenings,omitempty"`
}
