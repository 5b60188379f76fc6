// Package limits defines the resource limits enforced on sandboxed commands.
package limits

import (
	"agentcage/pkg/errors"
)

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// ResourceLimits describes the hard limits enforced on one execution.
// All numeric fields must be positive; use Validate before handing the
// value to an executor.
type ResourceLimits struct {
	CPUTimeSecs     uint64 `yaml:"cpu_time_secs"`
	WallTimeSecs    uint64 `yaml:"wall_time_secs"`
	MemoryBytes     uint64 `yaml:"memory_bytes"`
	FileSizeBytes   uint64 `yaml:"file_size_bytes"`
	OpenFiles       uint64 `yaml:"open_files"`
	Processes       uint64 `yaml:"processes"`
	OutputSizeBytes uint64 `yaml:"output_size_bytes"`
	NetworkEnabled  bool   `yaml:"network_enabled"`
}

// Default returns the limits applied when a profile does not override them.
func Default() ResourceLimits {
	return ResourceLimits{
		CPUTimeSecs:     120,
		WallTimeSecs:    300,
		MemoryBytes:     512 * mib,
		FileSizeBytes:   100 * mib,
		OpenFiles:       256,
		Processes:       64,
		OutputSizeBytes: 10 * mib,
		NetworkEnabled:  false,
	}
}

// Minimal returns tight limits for untrusted one-shot commands.
func Minimal() ResourceLimits {
	return ResourceLimits{
		CPUTimeSecs:     10,
		WallTimeSecs:    30,
		MemoryBytes:     64 * mib,
		FileSizeBytes:   1 * mib,
		OpenFiles:       32,
		Processes:       4,
		OutputSizeBytes: 1 * mib,
		NetworkEnabled:  false,
	}
}

// Relaxed returns generous limits for trusted workloads such as builds.
func Relaxed() ResourceLimits {
	return ResourceLimits{
		CPUTimeSecs:     600,
		WallTimeSecs:    1800,
		MemoryBytes:     2 * gib,
		FileSizeBytes:   1 * gib,
		OpenFiles:       1024,
		Processes:       256,
		OutputSizeBytes: 100 * mib,
		NetworkEnabled:  true,
	}
}

// WithCPUTime returns a copy with the CPU time limit replaced.
func (r ResourceLimits) WithCPUTime(secs uint64) ResourceLimits {
	r.CPUTimeSecs = secs
	return r
}

// WithWallTime returns a copy with the wall clock limit replaced.
func (r ResourceLimits) WithWallTime(secs uint64) ResourceLimits {
	r.WallTimeSecs = secs
	return r
}

// WithMemory returns a copy with the memory limit replaced.
func (r ResourceLimits) WithMemory(bytes uint64) ResourceLimits {
	r.MemoryBytes = bytes
	return r
}

// WithFileSize returns a copy with the file size limit replaced.
func (r ResourceLimits) WithFileSize(bytes uint64) ResourceLimits {
	r.FileSizeBytes = bytes
	return r
}

// WithOpenFiles returns a copy with the open file descriptor limit replaced.
func (r ResourceLimits) WithOpenFiles(n uint64) ResourceLimits {
	r.OpenFiles = n
	return r
}

// WithProcesses returns a copy with the process count limit replaced.
func (r ResourceLimits) WithProcesses(n uint64) ResourceLimits {
	r.Processes = n
	return r
}

// WithOutputSize returns a copy with the captured output cap replaced.
func (r ResourceLimits) WithOutputSize(bytes uint64) ResourceLimits {
	r.OutputSizeBytes = bytes
	return r
}

// WithNetwork returns a copy with network access toggled.
func (r ResourceLimits) WithNetwork(enabled bool) ResourceLimits {
	r.NetworkEnabled = enabled
	return r
}

// Validate rejects limit sets with zero fields. A zero limit would either
// disable enforcement or kill the child before it runs a single instruction,
// and neither is ever intended.
func (r ResourceLimits) Validate() error {
	check := []struct {
		name  string
		value uint64
	}{
		{"cpu_time_secs", r.CPUTimeSecs},
		{"wall_time_secs", r.WallTimeSecs},
		{"memory_bytes", r.MemoryBytes},
		{"file_size_bytes", r.FileSizeBytes},
		{"open_files", r.OpenFiles},
		{"processes", r.Processes},
		{"output_size_bytes", r.OutputSizeBytes},
	}
	for _, c := range check {
		if c.value == 0 {
			return errors.Newf(errors.InvalidLimit, "resource limit %s must be positive", c.name).
				WithDetail("field", c.name)
		}
	}
	return nil
}
