//go:build linux

package isolation

import (
	"testing"

	"agentcage/sandbox/profile"

	"golang.org/x/sys/unix"
)

func TestResolveDisabledLayers(t *testing.T) {
	p := profile.Relaxed()
	p.Isolation = profile.Isolation{}
	plan, err := Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Seccomp != nil || plan.Landlock != nil || plan.Namespaces != nil {
		t.Errorf("disabled layers must stay off: %+v", plan)
	}
	if plan.DropCaps || plan.UseCgroup {
		t.Errorf("disabled layers must stay off: %+v", plan)
	}
	if len(plan.Weakenings) != 0 {
		t.Errorf("disabled layers are not weakenings: %v", plan.Weakenings)
	}
}

func TestResolveNetworkNamespaceFollowsPolicy(t *testing.T) {
	if !namespacesSupported() {
		t.Skip("user namespaces unavailable")
	}

	p := profile.Minimal()
	plan, err := Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Namespaces == nil {
		t.Fatal("minimal profile should arm namespaces")
	}
	if plan.Namespaces.CloneFlags&unix.CLONE_NEWNET == 0 {
		t.Error("disabled network must add the net namespace")
	}
	if plan.Namespaces.CloneFlags&unix.CLONE_NEWUSER == 0 {
		t.Error("user namespace flag missing")
	}

	p.Network = profile.EnabledNetwork()
	plan, err = Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Namespaces.CloneFlags&unix.CLONE_NEWNET != 0 {
		t.Error("enabled network must not add the net namespace")
	}
}

func TestResolveSeatbeltIgnoredOnLinux(t *testing.T) {
	p := profile.Standard()
	p.Isolation = profile.Isolation{
		Seatbelt: profile.LayerPolicy{Enabled: true, Mandatory: true},
	}
	plan, err := Resolve(p)
	if err != nil {
		t.Fatalf("seatbelt flag must not fail linux resolution: %v", err)
	}
	if plan.SeatbeltProfile != "" {
		t.Error("no seatbelt profile expected on linux")
	}
	for _, w := range plan.Weakenings {
		if w.Layer == LayerSeatbelt {
			t.Errorf("seatbelt on linux is not a weakening: %v", w)
		}
	}
}

func TestResolveLocalhostOnlyWeakens(t *testing.T) {
	plan, err := Resolve(profile.Standard())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	found := false
	for _, w := range plan.Weakenings {
		if w.Layer == LayerNetwork {
			found = true
		}
	}
	if !found {
		t.Errorf("localhost-only network must be recorded as a weakening on linux, got %v", plan.Weakenings)
	}

	// all-or-nothing policies need no such record
	p := profile.Standard()
	p.Network = profile.EnabledNetwork()
	p.Limits.NetworkEnabled = true
	plan, err = Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, w := range plan.Weakenings {
		if w.Layer == LayerNetwork {
			t.Errorf("open network should not weaken: %v", w)
		}
	}
}

func TestResolveCapabilitiesAlwaysArm(t *testing.T) {
	p := profile.Standard()
	plan, err := Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !plan.DropCaps {
		t.Error("capability dropping should arm whenever enabled")
	}
}
