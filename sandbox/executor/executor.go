// Package executor runs commands under the isolation a profile demands:
// it resolves the enforcement plan, spawns the child through the pre-exec
// helper, supervises it against its deadline and output cap, and returns a
// structured result with every child reaped and every resource released.
package executor

import (
	"context"
	"sync"
	"time"

	"agentcage/pkg/errors"
	"agentcage/sandbox/isolation"
	"agentcage/sandbox/observer"
	"agentcage/sandbox/profile"
	"agentcage/sandbox/pty"
	"agentcage/sandbox/result"
)

const (
	defaultHelperPath = "sandbox-init"
	defaultCgroupRoot = "/sys/fs/cgroup/agentcage"
	defaultKillGrace  = 2 * time.Second
)

// Config controls executor behavior.
type Config struct {
	HelperPath string        `yaml:"helperPath"`
	CgroupRoot string        `yaml:"cgroupRoot"`
	KillGrace  time.Duration `yaml:"killGrace"`
}

// ExecutionContext describes one command invocation. It is created fresh by
// the caller, owned by exactly one Execute call, and never reused. The
// profile it references is shared and read-only.
type ExecutionContext struct {
	ExecutionID string
	Command     string
	Args        []string
	Cwd         string
	Env         map[string]string
	Profile     profile.SandboxProfile
	Pty         *pty.Config
	// Deadline overrides the wall-time limit when set.
	Deadline time.Time
}

// kill reasons recorded by the supervisor; the first one wins.
const (
	killReasonTimeout   = "timeout"
	killReasonOutput    = "output_cap"
	killReasonCancelled = "cancelled"
	killReasonRequested = "requested"
)

// running tracks one in-flight execution for Kill.
type running struct {
	pid     int
	profile string
	killCh  chan string

	mu     sync.Mutex
	reason string
}

func (h *running) setReason(r string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reason == "" {
		h.reason = r
	}
}

func (h *running) killReason() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reason
}

// CommandExecutor is the sandbox service implementation.
type CommandExecutor struct {
	cfg     Config
	metrics observer.MetricsRecorder

	mu       sync.Mutex
	inFlight map[string]*running
}

// New creates an executor. A nil metrics recorder records nothing.
func New(cfg Config, metrics observer.MetricsRecorder) *CommandExecutor {
	if cfg.HelperPath == "" {
		cfg.HelperPath = defaultHelperPath
	}
	if cfg.CgroupRoot == "" {
		cfg.CgroupRoot = defaultCgroupRoot
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = defaultKillGrace
	}
	if metrics == nil {
		metrics = observer.NoopMetricsRecorder{}
	}
	return &CommandExecutor{
		cfg:      cfg,
		metrics:  metrics,
		inFlight: make(map[string]*running),
	}
}

// Execute runs one command to completion under the context profile.
// Supervisory outcomes (timeout, output cap, cancellation) come back in the
// result's exit classification; only setup failures return an error.
func (e *CommandExecutor) Execute(ctx context.Context, ec ExecutionContext) (result.ExecutionOutput, error) {
	if err := validateContext(ec); err != nil {
		return result.ExecutionOutput{}, err
	}

	plan, err := isolation.Resolve(ec.Profile)
	if err != nil {
		return result.ExecutionOutput{}, err
	}
	for _, w := range plan.Weakenings {
		e.metrics.ObserveWeakening(ctx, ec.Profile.Name, w.Layer)
	}

	env := ec.Profile.Environment.Sanitize(ec.Env)

	out, err := e.run(ctx, ec, plan, env)
	if err != nil {
		return out, err
	}
	out.ExecutionID = ec.ExecutionID
	out.Weakenings = append(out.Weakenings, plan.Weakenings...)

	var peakKB int64
	if out.Usage != nil {
		peakKB = out.Usage.PeakMemoryKB
	}
	e.metrics.ObserveExecution(ctx, ec.Profile.Name, out.Exit.Kind, out.Duration.Milliseconds(), peakKB)
	return out, nil
}

// Kill terminates a running execution. The execution's own Execute call
// still returns, with the exit classified as killed.
func (e *CommandExecutor) Kill(ctx context.Context, executionID string) error {
	if executionID == "" {
		return errors.New(errors.InvalidParams).WithMessage("execution id is required")
	}
	e.mu.Lock()
	h := e.inFlight[executionID]
	e.mu.Unlock()
	if h == nil {
		return errors.Newf(errors.NotRunning, "execution %s is not running", executionID)
	}
	select {
	case h.killCh <- killReasonRequested:
	default:
		// a kill is already in flight
	}
	return nil
}

func (e *CommandExecutor) register(id string, h *running) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.inFlight[id]; ok {
		return errors.Newf(errors.AlreadyRunning, "execution %s is already running", id)
	}
	e.inFlight[id] = h
	return nil
}

func (e *CommandExecutor) unregister(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, id)
}

func validateContext(ec ExecutionContext) error {
	if ec.ExecutionID == "" {
		return errors.New(errors.RequiredFieldEmpty).WithMessage("execution id is required")
	}
	if ec.Command == "" {
		return errors.New(errors.RequiredFieldEmpty).WithMessage("command is required")
	}
	if ec.Cwd == "" {
		return errors.New(errors.RequiredFieldEmpty).WithMessage("work dir is required")
	}
	return ec.Profile.Validate()
}

// wallLimit derives the supervision deadline: the explicit deadline when the
// caller set one, the profile's wall-time limit otherwise.
func wallLimit(ec ExecutionContext) time.Duration {
	if !ec.Deadline.IsZero() {
		return time.Until(ec.Deadline)
	}
	return time.Duration(ec.Profile.Limits.WallTimeSecs) * time.Second
}
