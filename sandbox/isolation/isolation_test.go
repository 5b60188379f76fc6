package isolation

import (
	"testing"

	"agentcage/sandbox/profile"
)

func TestSeccompSpecTranslation(t *testing.T) {
	if got := seccompSpec(profile.PermissiveSyscalls()); got != nil {
		t.Errorf("disabled rules should produce nil spec, got %+v", got)
	}

	spec := seccompSpec(profile.StandardSyscalls())
	if spec == nil {
		t.Fatal("blocklist rules should produce a spec")
	}
	if spec.Mode != "blocklist" {
		t.Errorf("mode = %q", spec.Mode)
	}
	found := false
	for _, s := range spec.Blocked {
		if s == "ptrace" {
			found = true
		}
	}
	if !found {
		t.Error("standard blocklist should include ptrace")
	}

	spec = seccompSpec(profile.MinimalSyscalls())
	if spec == nil || spec.Mode != "allowlist" || len(spec.Allowed) == 0 {
		t.Errorf("minimal rules translated wrong: %+v", spec)
	}
}

func TestLandlockSpecTranslation(t *testing.T) {
	p, err := profile.NewBuilder("t").
		Filesystem(profile.FilesystemRules{}).
		AllowPath("/usr", profile.PermRead).
		AllowPath("/workspace", profile.PermRead|profile.PermWrite).
		AllowPath("/bin", profile.PermRead|profile.PermExec).
		DenyPath("/workspace/.secrets", profile.PermRead).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	spec := landlockSpec(p.Filesystem)
	if spec == nil {
		t.Fatal("expected a landlock spec")
	}
	if len(spec.ReadPaths) != 3 {
		t.Errorf("read paths = %v", spec.ReadPaths)
	}
	if len(spec.WritePaths) != 1 || spec.WritePaths[0] != "/workspace" {
		t.Errorf("write paths = %v", spec.WritePaths)
	}
	if len(spec.ExecPaths) != 1 || spec.ExecPaths[0] != "/bin" {
		t.Errorf("exec paths = %v", spec.ExecPaths)
	}
	// deny rules are not part of the allow set
	for _, p := range spec.ReadPaths {
		if p == "/workspace/.secrets" {
			t.Error("deny rule leaked into landlock allow set")
		}
	}

	if got := landlockSpec(profile.FilesystemRules{}); got != nil {
		t.Errorf("empty rules should produce nil spec, got %+v", got)
	}
}

func TestPlanWeaken(t *testing.T) {
	plan := &Plan{}
	plan.weaken(LayerLandlock, "kernel too old")
	plan.weaken(LayerCgroup, "not mounted")
	if len(plan.Weakenings) != 2 {
		t.Fatalf("weakenings = %v", plan.Weakenings)
	}
	if plan.Weakenings[0].Layer != LayerLandlock || plan.Weakenings[0].Reason == "" {
		t.Errorf("weakening not recorded: %+v", plan.Weakenings[0])
	}
}
