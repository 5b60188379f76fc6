package isolation

import (
	"strings"
	"testing"

	"agentcage/sandbox/profile"
)

func TestSeatbeltDefaultDeny(t *testing.T) {
	out := GenerateSeatbeltProfile(profile.Minimal())
	if !strings.HasPrefix(out, "(version 1)\n") {
		t.Error("profile must start with the version directive")
	}
	if !strings.Contains(out, "(deny default)") {
		t.Error("profile must deny by default")
	}
}

func TestSeatbeltNetworkDisabled(t *testing.T) {
	out := GenerateSeatbeltProfile(profile.Minimal())
	if !strings.Contains(out, "(deny network*)") {
		t.Error("disabled network must deny network*")
	}
	if strings.Contains(out, "(allow network*") {
		t.Error("disabled network must not allow any network")
	}
}

func TestSeatbeltLocalhostOnly(t *testing.T) {
	out := GenerateSeatbeltProfile(profile.Standard())
	for _, want := range []string{
		`(allow network* (local ip "localhost:*"))`,
		`(allow network* (local ip "127.0.0.1:*"))`,
		`(allow network* (local ip "::1:*"))`,
		`(deny network* (remote tcp "*:18789"))`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("standard profile missing %s", want)
		}
	}
	if strings.Contains(out, "(allow network*)\n") {
		t.Error("localhost-only must not allow all network")
	}
}

func TestSeatbeltOpenNetworkBlocksPorts(t *testing.T) {
	out := GenerateSeatbeltProfile(profile.Relaxed())
	if !strings.Contains(out, "(allow network*)\n") {
		t.Error("relaxed profile should allow network")
	}
	for _, want := range []string{
		`(deny network* (remote tcp "*:22"))`,
		`(deny network* (remote tcp "*:25"))`,
		`(deny network* (remote tcp "*:18789"))`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("relaxed profile missing %s", want)
		}
	}
}

func TestSeatbeltFileRules(t *testing.T) {
	p, err := profile.NewBuilder("t").
		AllowPath("/workspace", profile.PermRead|profile.PermWrite).
		DenyPath("/workspace/.secrets", profile.PermRead|profile.PermWrite).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	out := GenerateSeatbeltProfile(p)

	if !strings.Contains(out, `(allow file-read* file-write* (subpath "/workspace"))`) {
		t.Error("allow rule not rendered")
	}
	deny := `(deny file-read* file-write* (subpath "/workspace/.secrets"))`
	if !strings.Contains(out, deny) {
		t.Error("deny rule not rendered")
	}
	// the deny must come after the allow; in SBPL the later rule wins
	if strings.Index(out, deny) < strings.Index(out, `(subpath "/workspace")`) {
		t.Error("deny rules must follow allow rules")
	}
}

func TestSeatbeltExecRule(t *testing.T) {
	p, err := profile.NewBuilder("t").
		AllowPath("/opt/tools", profile.PermRead|profile.PermExec).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	out := GenerateSeatbeltProfile(p)
	if !strings.Contains(out, `(allow file-read* process-exec* (subpath "/opt/tools"))`) {
		t.Error("exec permission not rendered")
	}
}
