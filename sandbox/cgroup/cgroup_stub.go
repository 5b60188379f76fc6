//go:build !linux

// Package cgroup applies cgroup v2 limits to executions and reads usage back.
package cgroup

import (
	"os"

	"agentcage/pkg/errors"
	"agentcage/sandbox/limits"
)

// Group is a placeholder on platforms without cgroups.
type Group struct{}

// Create always fails: cgroups are Linux-only.
func Create(root, executionID string) (*Group, error) {
	return nil, errors.New(errors.UnsupportedPlatform).
		WithMessage("cgroups are only available on linux")
}

func (g *Group) Path() string                              { return "" }
func (g *Group) ApplyLimits(l limits.ResourceLimits) error { return nil }
func (g *Group) AddProcess(pid int) error                  { return nil }
func (g *Group) Kill() error                               { return nil }
func (g *Group) Remove()                                   {}
func (g *Group) OomKilled() bool                           { return false }
func (g *Group) MemoryPeakKB(state *os.ProcessState) int64 { return 0 }
