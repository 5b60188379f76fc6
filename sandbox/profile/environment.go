package profile

// SafePath replaces any inherited PATH so a command cannot be redirected to
// attacker-controlled binaries through PATH manipulation.
const SafePath = "/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin"

// EnvironmentRules controls which variables a sandboxed child sees.
type EnvironmentRules struct {
	// Inherit passes the parent environment through (minus Blocked) instead
	// of starting from the Allowed set.
	Inherit bool `yaml:"inherit"`

	// Allowed lists the variables kept when not inheriting.
	Allowed []string `yaml:"allowed"`

	// Blocked variables are removed unconditionally. Presets seed this from
	// DefaultBlockedVars; tests may substitute their own table.
	Blocked []string `yaml:"blocked"`

	// Set forces variables to fixed values after filtering.
	Set map[string]string `yaml:"set"`
}

// DefaultBlockedVars returns the variables no sandboxed process may inherit.
// These are the channels through which an environment value alone changes
// what code the child runs.
func DefaultBlockedVars() []string {
	return []string{
		// dynamic linker injection
		"LD_PRELOAD",
		"LD_LIBRARY_PATH",
		"LD_AUDIT",
		"LD_DEBUG",
		"DYLD_INSERT_LIBRARIES",
		"DYLD_LIBRARY_PATH",
		// runtime injection
		"NODE_OPTIONS",
		"NODE_PATH",
		"PYTHONSTARTUP",
		"PYTHONPATH",
		"PYTHONHOME",
		"RUBYOPT",
		"RUBYLIB",
		"PERL5OPT",
		"PERL5LIB",
		// shell injection
		"BASH_ENV",
		"ENV",
		"IFS",
		// other
		"GCONV_PATH",
		"SSLKEYLOGFILE",
	}
}

// MinimalEnv keeps only a handful of identity variables and forces SafePath.
func MinimalEnv() EnvironmentRules {
	return EnvironmentRules{
		Inherit: false,
		Allowed: []string{"HOME", "USER", "SHELL", "TERM", "LANG"},
		Blocked: DefaultBlockedVars(),
		Set:     map[string]string{"PATH": SafePath},
	}
}

// StandardEnv inherits the parent environment minus the blocked table and
// forces SafePath.
func StandardEnv() EnvironmentRules {
	return EnvironmentRules{
		Inherit: true,
		Blocked: DefaultBlockedVars(),
		Set:     map[string]string{"PATH": SafePath},
	}
}

// PermissiveEnv inherits everything except the blocked table; PATH is kept.
func PermissiveEnv() EnvironmentRules {
	return EnvironmentRules{
		Inherit: true,
		Blocked: DefaultBlockedVars(),
	}
}

// WithAllowed returns a copy with extra allowed variable names.
func (e EnvironmentRules) WithAllowed(names ...string) EnvironmentRules {
	e.Allowed = append(append([]string{}, e.Allowed...), names...)
	return e
}

// WithBlocked returns a copy with extra blocked variable names.
func (e EnvironmentRules) WithBlocked(names ...string) EnvironmentRules {
	e.Blocked = append(append([]string{}, e.Blocked...), names...)
	return e
}

// WithSet returns a copy that forces name to value.
func (e EnvironmentRules) WithSet(name, value string) EnvironmentRules {
	set := make(map[string]string, len(e.Set)+1)
	for k, v := range e.Set {
		set[k] = v
	}
	set[name] = value
	e.Set = set
	return e
}

// Sanitize derives the child environment from the parent one. Filtering
// happens before spawn; the child never observes a removed variable.
func (e EnvironmentRules) Sanitize(parent map[string]string) map[string]string {
	out := make(map[string]string)
	if e.Inherit {
		for k, v := range parent {
			out[k] = v
		}
	} else {
		for _, k := range e.Allowed {
			if v, ok := parent[k]; ok {
				out[k] = v
			}
		}
	}
	for _, k := range e.Blocked {
		delete(out, k)
	}
	for k, v := range e.Set {
		out[k] = v
	}
	return out
}
