package profile

import "testing"

func TestEvaluateLongestPrefixWins(t *testing.T) {
	rules := FilesystemRules{Rules: []PathRule{
		{Prefix: "/etc", Allow: true, Perms: PermRead},
		{Prefix: "/etc/shadow", Allow: false, Perms: PermRead | PermWrite},
	}}

	if !rules.Evaluate("/etc/hosts", PermRead) {
		t.Error("/etc/hosts should be readable under /etc allow rule")
	}
	if rules.Evaluate("/etc/shadow", PermRead) {
		t.Error("/etc/shadow should be denied by the longer prefix")
	}
}

func TestEvaluateDenyWinsOnEqualPrefix(t *testing.T) {
	rules := FilesystemRules{Rules: []PathRule{
		{Prefix: "/data", Allow: true, Perms: PermWrite},
		{Prefix: "/data", Allow: false, Perms: PermWrite},
	}}
	if rules.Evaluate("/data/out.txt", PermWrite) {
		t.Error("deny must beat allow on equal prefix length")
	}

	// order must not matter
	rules.Rules[0], rules.Rules[1] = rules.Rules[1], rules.Rules[0]
	if rules.Evaluate("/data/out.txt", PermWrite) {
		t.Error("evaluation must be order-independent")
	}
}

func TestEvaluateComponentBoundary(t *testing.T) {
	rules := FilesystemRules{Rules: []PathRule{
		{Prefix: "/etc/pass", Allow: true, Perms: PermRead},
	}}
	if rules.Evaluate("/etc/passwd", PermRead) {
		t.Error("/etc/pass prefix must not capture /etc/passwd")
	}
	if !rules.Evaluate("/etc/pass/key", PermRead) {
		t.Error("/etc/pass/key falls under /etc/pass")
	}
	if !rules.Evaluate("/etc/pass", PermRead) {
		t.Error("exact match should hit the rule")
	}
}

func TestEvaluateUnmatchedDenied(t *testing.T) {
	rules := ReadOnlyRules()
	if rules.Evaluate("/root/.ssh/id_rsa", PermRead) {
		t.Error("paths outside every rule must be denied")
	}
	if rules.Evaluate("/usr/share/doc", PermWrite) {
		t.Error("read-only rules must not grant write anywhere")
	}
}

func TestEvaluatePermissionScoping(t *testing.T) {
	rules := FilesystemRules{Rules: []PathRule{
		{Prefix: "/bin", Allow: true, Perms: PermRead | PermExec},
		{Prefix: "/tmp", Allow: true, Perms: PermRead | PermWrite},
	}}
	if !rules.Evaluate("/bin/sh", PermExec) {
		t.Error("/bin/sh should be executable")
	}
	if rules.Evaluate("/tmp/x.sh", PermExec) {
		t.Error("exec not granted under /tmp")
	}
	if rules.Evaluate("/bin/sh", PermWrite) {
		t.Error("write not granted under /bin")
	}
}

func TestEvaluateRootRule(t *testing.T) {
	rules := FilesystemRules{Rules: []PathRule{
		{Prefix: "/", Allow: true, Perms: PermRead},
		{Prefix: "/secret", Allow: false, Perms: PermRead},
	}}
	if !rules.Evaluate("/anything/else", PermRead) {
		t.Error("root rule should cover arbitrary paths")
	}
	if rules.Evaluate("/secret/file", PermRead) {
		t.Error("deny under / must still win by prefix length")
	}
}

func TestPermissionRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		s    string
		p    Permission
		want string
	}{
		{"rwx", PermRead | PermWrite | PermExec, "rwx"},
		{"r", PermRead, "r"},
		{"rx", PermRead | PermExec, "rx"},
		{"-", 0, "-"},
	} {
		p, ok := ParsePermission(tc.s)
		if !ok || p != tc.p {
			t.Errorf("ParsePermission(%q) = %v, %v", tc.s, p, ok)
		}
		if got := p.String(); got != tc.want {
			t.Errorf("%v.String() = %q, want %q", p, got, tc.want)
		}
	}
	if _, ok := ParsePermission("rq"); ok {
		t.Error("invalid permission letter should fail to parse")
	}
}

func TestAllowedForAndDeniedPrefixes(t *testing.T) {
	rules := ReadOnlyRules()
	writes := rules.AllowedFor(PermWrite)
	if len(writes) != 0 {
		t.Errorf("read-only rules should have no write prefixes, got %v", writes)
	}
	reads := rules.AllowedFor(PermRead)
	if len(reads) == 0 {
		t.Error("expected read prefixes")
	}
	denied := rules.DeniedPrefixes()
	found := false
	for _, d := range denied {
		if d == "/etc/shadow" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected /etc/shadow in denied prefixes, got %v", denied)
	}
}
