// Package observer defines logging and metrics hooks for sandbox execution.
package observer

import (
	"context"

	"agentcage/sandbox/result"
)

// MetricsRecorder records sandbox execution metrics.
type MetricsRecorder interface {
	ObserveExecution(ctx context.Context, profile string, exit result.ExitKind, durationMs int64, peakMemoryKB int64)
	ObserveWeakening(ctx context.Context, profile string, layer string)
	ObserveKill(ctx context.Context, profile string, reason string)
}

// NoopMetricsRecorder is a default recorder that does nothing.
type NoopMetricsRecorder struct{}

func (NoopMetricsRecorder) ObserveExecution(ctx context.Context, profile string, exit result.ExitKind, durationMs int64, peakMemoryKB int64) {
}

func (NoopMetricsRecorder) ObserveWeakening(ctx context.Context, profile string, layer string) {
}

func (NoopMetricsRecorder) ObserveKill(ctx context.Context, profile string, reason string) {
}
