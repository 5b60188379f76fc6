//go:build linux

// Package cgroup applies cgroup v2 limits to executions and reads usage back.
package cgroup

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"agentcage/pkg/errors"
	"agentcage/sandbox/limits"
)

// Group is one per-execution cgroup under the configured root.
type Group struct {
	path string
}

// Create makes a fresh cgroup for one execution. The caller must Remove it.
func Create(root, executionID string) (*Group, error) {
	if root == "" {
		return nil, errors.New(errors.CgroupFailed).WithMessage("cgroup root is required")
	}
	runDir := fmt.Sprintf("%s-%d", executionID, time.Now().UnixNano())
	path := filepath.Join(root, runDir)
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, errors.Wrapf(err, errors.CgroupFailed, "create cgroup %s", path)
	}
	return &Group{path: path}, nil
}

// Path returns the cgroup directory.
func (g *Group) Path() string {
	return g.path
}

// ApplyLimits writes memory.max, pids.max and cpu.max from the limit set.
func (g *Group) ApplyLimits(l limits.ResourceLimits) error {
	pidsValue := "max"
	if l.Processes > 0 {
		pidsValue = strconv.FormatUint(l.Processes, 10)
	}
	if err := g.write("pids.max", pidsValue); err != nil {
		return err
	}
	if l.MemoryBytes > 0 {
		if err := g.write("memory.max", strconv.FormatUint(l.MemoryBytes, 10)); err != nil {
			return err
		}
	}
	return g.write("cpu.max", "max 100000")
}

// AddProcess moves pid into the cgroup.
func (g *Group) AddProcess(pid int) error {
	if pid <= 0 {
		return errors.New(errors.CgroupFailed).WithMessage("invalid pid")
	}
	return g.write("cgroup.procs", strconv.Itoa(pid))
}

// Kill terminates every process in the cgroup via cgroup.kill.
func (g *Group) Kill() error {
	killPath := filepath.Join(g.path, "cgroup.kill")
	if _, err := os.Stat(killPath); err != nil {
		return errors.Wrap(err, errors.CgroupFailed)
	}
	if err := os.WriteFile(killPath, []byte("1"), 0600); err != nil {
		return errors.Wrap(err, errors.CgroupFailed)
	}
	return nil
}

// Remove deletes the cgroup directory. Safe on a nil group.
func (g *Group) Remove() {
	if g == nil {
		return
	}
	_ = os.RemoveAll(g.path)
}

// OomKilled reports whether the kernel's OOM killer fired inside the group.
func (g *Group) OomKilled() bool {
	if g == nil {
		return false
	}
	data, err := os.ReadFile(filepath.Join(g.path, "memory.events"))
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		if fields[0] == "oom_kill" {
			val, _ := strconv.ParseInt(fields[1], 10, 64)
			return val > 0
		}
	}
	return false
}

// MemoryPeakKB returns the peak memory in KiB, from memory.peak when the
// kernel provides it, falling back to the wait4 rusage.
func (g *Group) MemoryPeakKB(state *os.ProcessState) int64 {
	if g != nil {
		if val, err := g.readInt("memory.peak"); err == nil && val > 0 {
			return val / 1024
		}
	}
	if state == nil {
		return 0
	}
	if usage, ok := state.SysUsage().(*syscall.Rusage); ok {
		return usage.Maxrss
	}
	return 0
}

func (g *Group) readInt(name string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(g.path, name))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

func (g *Group) write(name, value string) error {
	path := filepath.Join(g.path, name)
	if err := os.WriteFile(path, []byte(value), 0640); err != nil {
		return errors.Wrapf(err, errors.CgroupFailed, "write %s", path)
	}
	return nil
}
