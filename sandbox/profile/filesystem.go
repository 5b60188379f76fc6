package profile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Permission is a bitmask of filesystem access kinds.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExec
)

// String returns a compact rwx-style rendering, used in logs and profiles.
func (p Permission) String() string {
	var b strings.Builder
	if p&PermRead != 0 {
		b.WriteByte('r')
	}
	if p&PermWrite != 0 {
		b.WriteByte('w')
	}
	if p&PermExec != 0 {
		b.WriteByte('x')
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

// ParsePermission parses an rwx-style permission string from a profile file.
func ParsePermission(s string) (Permission, bool) {
	var p Permission
	for _, c := range s {
		switch c {
		case 'r':
			p |= PermRead
		case 'w':
			p |= PermWrite
		case 'x':
			p |= PermExec
		case '-':
		default:
			return 0, false
		}
	}
	return p, true
}

// PathRule grants or denies a permission set under a path prefix.
type PathRule struct {
	Prefix string     `yaml:"prefix"`
	Allow  bool       `yaml:"allow"`
	Perms  Permission `yaml:"-"`
}

// pathRuleYAML is the profile file form; permissions are spelled "rwx".
type pathRuleYAML struct {
	Prefix string `yaml:"prefix"`
	Allow  bool   `yaml:"allow"`
	Perms  string `yaml:"perms"`
}

// UnmarshalYAML decodes the rwx permission spelling used in profile files.
func (r *PathRule) UnmarshalYAML(node *yaml.Node) error {
	var raw pathRuleYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	perms, ok := ParsePermission(raw.Perms)
	if !ok {
		return fmt.Errorf("invalid permission string %q for path %q", raw.Perms, raw.Prefix)
	}
	r.Prefix = raw.Prefix
	r.Allow = raw.Allow
	r.Perms = perms
	return nil
}

// MarshalYAML encodes permissions in the rwx spelling.
func (r PathRule) MarshalYAML() (interface{}, error) {
	return pathRuleYAML{Prefix: r.Prefix, Allow: r.Allow, Perms: r.Perms.String()}, nil
}

// FilesystemRules is an ordered list of path rules. Order carries no meaning
// for evaluation: the longest matching prefix wins, and a deny rule beats an
// allow rule of the same prefix length.
type FilesystemRules struct {
	Rules []PathRule `yaml:"rules"`
}

// matches reports whether path falls under the rule prefix. Prefixes match on
// path component boundaries, so "/etc/pass" does not capture "/etc/passwd".
func (r PathRule) matches(path string) bool {
	prefix := strings.TrimSuffix(r.Prefix, "/")
	if prefix == "" {
		// rule for "/" covers everything
		return strings.HasPrefix(path, "/")
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// Evaluate decides whether the requested permission on path is allowed.
// Unmatched paths are denied.
func (f FilesystemRules) Evaluate(path string, perm Permission) bool {
	bestLen := -1
	allowed := false
	for _, r := range f.Rules {
		if r.Perms&perm == 0 {
			continue
		}
		if !r.matches(path) {
			continue
		}
		l := len(strings.TrimSuffix(r.Prefix, "/"))
		switch {
		case l > bestLen:
			bestLen = l
			allowed = r.Allow
		case l == bestLen && !r.Allow:
			// deny wins on equal prefix length
			allowed = false
		}
	}
	if bestLen < 0 {
		return false
	}
	return allowed
}

// AllowedFor returns the prefixes that grant perm, for layers (landlock) that
// express policy as an allow set. Deny rules that punch holes in an allow
// prefix cannot be represented there; Evaluate stays the source of truth.
func (f FilesystemRules) AllowedFor(perm Permission) []string {
	var out []string
	for _, r := range f.Rules {
		if r.Allow && r.Perms&perm != 0 {
			out = append(out, r.Prefix)
		}
	}
	return out
}

// DeniedPrefixes returns the deny rule prefixes, independent of permission.
func (f FilesystemRules) DeniedPrefixes() []string {
	var out []string
	for _, r := range f.Rules {
		if !r.Allow {
			out = append(out, r.Prefix)
		}
	}
	return out
}

// WithRule returns a copy with one more rule appended.
func (f FilesystemRules) WithRule(prefix string, allow bool, perms Permission) FilesystemRules {
	rules := make([]PathRule, len(f.Rules), len(f.Rules)+1)
	copy(rules, f.Rules)
	rules = append(rules, PathRule{Prefix: prefix, Allow: allow, Perms: perms})
	return FilesystemRules{Rules: rules}
}

// ReadOnlyRules permits reading the usual system trees and executing from
// the system bin directories, with the account databases denied outright.
func ReadOnlyRules() FilesystemRules {
	return FilesystemRules{Rules: []PathRule{
		{Prefix: "/usr", Allow: true, Perms: PermRead},
		{Prefix: "/lib", Allow: true, Perms: PermRead},
		{Prefix: "/lib64", Allow: true, Perms: PermRead},
		{Prefix: "/bin", Allow: true, Perms: PermRead | PermExec},
		{Prefix: "/sbin", Allow: true, Perms: PermRead},
		{Prefix: "/usr/bin", Allow: true, Perms: PermRead | PermExec},
		{Prefix: "/etc/shadow", Allow: false, Perms: PermRead | PermWrite},
		{Prefix: "/etc/passwd", Allow: false, Perms: PermRead | PermWrite},
	}}
}

// StandardRules adds /etc reads and scratch space under /tmp.
func StandardRules() FilesystemRules {
	r := ReadOnlyRules()
	r = r.WithRule("/etc", true, PermRead)
	r = r.WithRule("/tmp", true, PermRead|PermWrite)
	return r
}

// WorkspaceRules adds read/write/exec access under the workspace directory.
func WorkspaceRules(workspace string) FilesystemRules {
	r := StandardRules()
	r = r.WithRule("/usr/local/bin", true, PermRead|PermExec)
	if workspace != "" {
		r = r.WithRule(workspace, true, PermRead|PermWrite|PermExec)
	}
	return r
}
