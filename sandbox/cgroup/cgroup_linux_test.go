//go:build linux

package cgroup

import (
	"os"
	"path/filepath"
	"testing"

	"agentcage/sandbox/limits"
)

// Tests here run against a plain directory standing in for a cgroup v2
// mount; they exercise the file protocol, not the kernel.

func TestApplyLimitsWritesControlFiles(t *testing.T) {
	root := t.TempDir()
	g, err := Create(root, "exec-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer g.Remove()

	l := limits.Minimal()
	if err := g.ApplyLimits(l); err != nil {
		t.Fatalf("ApplyLimits: %v", err)
	}

	pids, _ := os.ReadFile(filepath.Join(g.Path(), "pids.max"))
	if string(pids) != "4" {
		t.Errorf("pids.max = %q, want 4", pids)
	}
	mem, _ := os.ReadFile(filepath.Join(g.Path(), "memory.max"))
	if string(mem) != "67108864" {
		t.Errorf("memory.max = %q, want 67108864", mem)
	}
}

func TestCreateRequiresRoot(t *testing.T) {
	if _, err := Create("", "exec-1"); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestOomKilledParsesMemoryEvents(t *testing.T) {
	root := t.TempDir()
	g, err := Create(root, "exec-2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer g.Remove()

	events := "low 0\nhigh 0\nmax 3\noom 1\noom_kill 1\n"
	if err := os.WriteFile(filepath.Join(g.Path(), "memory.events"), []byte(events), 0640); err != nil {
		t.Fatal(err)
	}
	if !g.OomKilled() {
		t.Error("expected OomKilled to report true")
	}

	events = "low 0\nhigh 0\nmax 0\noom 0\noom_kill 0\n"
	if err := os.WriteFile(filepath.Join(g.Path(), "memory.events"), []byte(events), 0640); err != nil {
		t.Fatal(err)
	}
	if g.OomKilled() {
		t.Error("expected OomKilled to report false")
	}
}

func TestMemoryPeakPrefersCgroup(t *testing.T) {
	root := t.TempDir()
	g, err := Create(root, "exec-3")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer g.Remove()

	if err := os.WriteFile(filepath.Join(g.Path(), "memory.peak"), []byte("2097152\n"), 0640); err != nil {
		t.Fatal(err)
	}
	if got := g.MemoryPeakKB(nil); got != 2048 {
		t.Errorf("MemoryPeakKB = %d, want 2048", got)
	}
}

func TestNilGroupIsSafe(t *testing.T) {
	var g *Group
	g.Remove()
	if g.OomKilled() {
		t.Error("nil group should not report oom")
	}
	if g.MemoryPeakKB(nil) != 0 {
		t.Error("nil group peak should be 0")
	}
}
