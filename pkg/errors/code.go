package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 20000-20999: Profile & setup errors
// 21000-21999: Execution errors
// 22000-22999: Supervision errors
// 23000-23999: PTY & stream I/O errors
// 24000-24999: Isolation layer errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalError      ErrorCode = 10001
	InvalidParams      ErrorCode = 10002
	NotFound           ErrorCode = 10003
	ServiceUnavailable ErrorCode = 10004

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	InvalidFormat      ErrorCode = 10301
	RequiredFieldEmpty ErrorCode = 10302

	// ========== Profile & Setup Errors (20000-20999) ==========

	// Profile construction (20000-20099)
	InvalidProfile    ErrorCode = 20000
	ProfileNotFound   ErrorCode = 20001
	InvalidLimit      ErrorCode = 20002
	InvalidPathRule   ErrorCode = 20003
	InvalidEnvRule    ErrorCode = 20004
	ProfileLoadFailed ErrorCode = 20005

	// Sandbox setup (20100-20199)
	SetupFailed         ErrorCode = 20100
	UnsupportedPlatform ErrorCode = 20101
	HelperNotFound      ErrorCode = 20102

	// ========== Execution Errors (21000-21999) ==========

	ExecutionFailed ErrorCode = 21000
	SpawnFailed     ErrorCode = 21001
	AlreadyRunning  ErrorCode = 21003
	NotRunning      ErrorCode = 21004

	// ========== Supervision Errors (22000-22999) ==========

	Timeout               ErrorCode = 22000
	ResourceLimitExceeded ErrorCode = 22001
	OutputLimitExceeded   ErrorCode = 22002

	// ========== PTY & Stream I/O Errors (23000-23999) ==========

	PtyOpenFailed   ErrorCode = 23000
	PtyResizeFailed ErrorCode = 23001
	PtyClosed       ErrorCode = 23002

	// ========== Isolation Layer Errors (24000-24999) ==========

	CgroupFailed ErrorCode = 24004
)

var errorMessages = map[ErrorCode]string{
	Success: "Success",

	// Generic
	InternalError:      "Internal error",
	InvalidParams:      "Invalid parameters",
	NotFound:           "Resource not found",
	ServiceUnavailable: "Service unavailable",

	// Validation
	ValidationFailed:   "Validation failed",
	InvalidFormat:      "Invalid format",
	RequiredFieldEmpty: "Required field is empty",

	// Profile
	InvalidProfile:    "Invalid sandbox profile",
	ProfileNotFound:   "Sandbox profile not found",
	InvalidLimit:      "Invalid resource limit",
	InvalidPathRule:   "Invalid filesystem path rule",
	InvalidEnvRule:    "Invalid environment rule",
	ProfileLoadFailed: "Failed to load sandbox profile",

	// Setup
	SetupFailed:         "Sandbox setup failed",
	UnsupportedPlatform: "Sandbox feature not supported on this platform",
	HelperNotFound:      "Sandbox helper binary not found",

	// Execution
	ExecutionFailed: "Command execution failed",
	SpawnFailed:     "Failed to spawn command",
	AlreadyRunning:  "Execution is already running",
	NotRunning:      "Execution is not running",

	// Supervision
	Timeout:               "Command timed out",
	ResourceLimitExceeded: "Resource limit exceeded",
	OutputLimitExceeded:   "Output limit exceeded",

	// PTY & stream I/O
	PtyOpenFailed:   "Failed to allocate PTY",
	PtyResizeFailed: "Failed to resize PTY",
	PtyClosed:       "PTY session is closed",

	// Isolation layers
	CgroupFailed: "Cgroup limit setup failed",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// Retriable reports whether an invocation that failed with this code may
// reasonably be retried by the caller, e.g. with a larger limit. Setup and
// profile errors never are: the platform or configuration will not change
// between attempts.
func (c ErrorCode) Retriable() bool {
	switch c {
	case Timeout, ResourceLimitExceeded, OutputLimitExceeded:
		return true
	default:
		return false
	}
}
