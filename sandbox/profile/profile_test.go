package profile

import (
	"os"
	"path/filepath"
	"testing"

	"agentcage/pkg/errors"
	"agentcage/sandbox/limits"
)

func TestPresetProfilesValidate(t *testing.T) {
	for _, p := range []SandboxProfile{Minimal(), Standard(), Relaxed()} {
		if err := p.Validate(); err != nil {
			t.Errorf("preset %q should validate, got %v", p.Name, err)
		}
	}
}

func TestMinimalProfileShape(t *testing.T) {
	p := Minimal()
	if p.Network.Enabled {
		t.Error("minimal profile must disable network")
	}
	if p.Syscalls.Mode != SyscallAllowlist {
		t.Errorf("minimal profile syscall mode = %q, want allowlist", p.Syscalls.Mode)
	}
	if !p.Isolation.Seccomp.Mandatory || !p.Isolation.Namespaces.Mandatory {
		t.Error("minimal profile should mark seccomp and namespaces mandatory")
	}
}

func TestStandardProfileBlocksGatewayPort(t *testing.T) {
	p := Standard()
	found := false
	for _, port := range p.Network.BlockedPorts {
		if port == gatewayPort {
			found = true
		}
	}
	if !found {
		t.Error("standard profile must block the control-plane port")
	}
	if !p.Network.LocalhostOnly {
		t.Error("standard profile network should be localhost-only")
	}
}

func TestPresetNetworkCoherence(t *testing.T) {
	for _, p := range []SandboxProfile{Minimal(), Standard(), Relaxed()} {
		if p.Network.Enabled != p.Limits.NetworkEnabled {
			t.Errorf("preset %q: network rules enabled=%v but limits enabled=%v",
				p.Name, p.Network.Enabled, p.Limits.NetworkEnabled)
		}
	}
}

func TestValidateNetworkFlagMismatch(t *testing.T) {
	p := Standard()
	p.Limits.NetworkEnabled = false
	if err := p.Validate(); !errors.Is(err, errors.InvalidProfile) {
		t.Errorf("expected InvalidProfile for disagreeing network flags, got %v", err)
	}
}

func TestBuilderValidation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := NewBuilder("custom").
			Limits(limits.Minimal()).
			AllowPath("/workspace", PermRead|PermWrite|PermExec).
			Network(DisabledNetwork()).
			Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		if p.Name != "custom" {
			t.Errorf("name = %q", p.Name)
		}
		if p.Limits.NetworkEnabled {
			t.Error("Network(disabled) should clear the limits flag")
		}
		if !p.Filesystem.Evaluate("/workspace/main.go", PermWrite) {
			t.Error("added allow rule not effective")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewBuilder("").Build()
		if !errors.Is(err, errors.InvalidProfile) {
			t.Errorf("expected InvalidProfile, got %v", err)
		}
	})

	t.Run("empty rule path", func(t *testing.T) {
		_, err := NewBuilder("x").AllowPath("", PermRead).Build()
		if !errors.Is(err, errors.InvalidPathRule) {
			t.Errorf("expected InvalidPathRule, got %v", err)
		}
	})

	t.Run("relative rule path", func(t *testing.T) {
		_, err := NewBuilder("x").AllowPath("workspace", PermRead).Build()
		if !errors.Is(err, errors.InvalidPathRule) {
			t.Errorf("expected InvalidPathRule, got %v", err)
		}
	})

	t.Run("empty permission set", func(t *testing.T) {
		_, err := NewBuilder("x").AllowPath("/workspace", 0).Build()
		if !errors.Is(err, errors.InvalidPathRule) {
			t.Errorf("expected InvalidPathRule, got %v", err)
		}
	})

	t.Run("zero limit", func(t *testing.T) {
		_, err := NewBuilder("x").Limits(limits.ResourceLimits{}).Build()
		if !errors.Is(err, errors.InvalidProfile) {
			t.Errorf("expected InvalidProfile, got %v", err)
		}
	})
}

func TestBuilderFromPreset(t *testing.T) {
	p, err := NewBuilderFrom("minimal", "locked-down").Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.Name != "locked-down" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Syscalls.Mode != SyscallAllowlist {
		t.Errorf("mode = %q, want minimal's allowlist", p.Syscalls.Mode)
	}

	p, err = NewBuilderFrom("no-such-preset", "").Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.Name != "standard" {
		t.Errorf("fallback name = %q, want standard", p.Name)
	}
}

func TestRepositoryPresetFallback(t *testing.T) {
	repo := NewRepository("")
	p, err := repo.Get("minimal")
	if err != nil {
		t.Fatalf("Get(minimal): %v", err)
	}
	if p.Name != "minimal" {
		t.Errorf("name = %q", p.Name)
	}

	_, err = repo.Get("no-such-profile")
	if !errors.Is(err, errors.ProfileNotFound) {
		t.Errorf("expected ProfileNotFound, got %v", err)
	}
}

func TestRepositoryLoadsFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`name: builder
limits:
  cpu_time_secs: 300
  wall_time_secs: 900
  memory_bytes: 1073741824
  file_size_bytes: 104857600
  open_files: 512
  processes: 128
  output_size_bytes: 10485760
filesystem:
  rules:
    - prefix: /workspace
      allow: true
      perms: rwx
    - prefix: /workspace/.git/hooks
      allow: false
      perms: w
`)
	if err := os.WriteFile(filepath.Join(dir, "builder.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	repo := NewRepository(dir)
	p, err := repo.Get("builder")
	if err != nil {
		t.Fatalf("Get(builder): %v", err)
	}
	if p.Limits.CPUTimeSecs != 300 || p.Limits.Processes != 128 {
		t.Errorf("limits not loaded: %+v", p.Limits)
	}
	if !p.Filesystem.Evaluate("/workspace/main.go", PermWrite) {
		t.Error("allow rule from file not effective")
	}
	if p.Filesystem.Evaluate("/workspace/.git/hooks/pre-commit", PermWrite) {
		t.Error("deny rule from file not effective")
	}

	// file profiles still fall back to presets for other names
	if _, err := repo.Get("standard"); err != nil {
		t.Errorf("preset fallback broken: %v", err)
	}
}

func TestRepositoryRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`name: broken
filesystem:
  rules:
    - prefix: relative/path
      allow: true
      perms: r
`)
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewRepository(dir).Get("broken")
	if !errors.Is(err, errors.InvalidPathRule) {
		t.Errorf("expected InvalidPathRule, got %v", err)
	}
}

func TestRepositoryList(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte("name: extra\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	names := NewRepository(dir).List()
	want := map[string]bool{"minimal": false, "standard": false, "relaxed": false, "extra": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("List missing %q: %v", n, names)
		}
	}
}
