package profile

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"agentcage/pkg/errors"
)

// Repository resolves profiles by name: yaml files in a config directory
// first, the in-code presets as fallback. A nil or dir-less Repository
// serves presets only.
type Repository struct {
	dir string
}

// NewRepository creates a repository over dir. Dir may be empty.
func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

// Get resolves a profile by name. File-backed profiles are validated before
// being returned, so a bad file surfaces here rather than at spawn time.
func (r *Repository) Get(name string) (SandboxProfile, error) {
	if r != nil && r.dir != "" {
		path := filepath.Join(r.dir, name+".yaml")
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	if p, ok := ByName(name); ok {
		return p, nil
	}
	return SandboxProfile{}, errors.Newf(errors.ProfileNotFound, "profile %q not found", name).
		WithDetail("profile", name)
}

// List returns the names available: files in the directory plus the presets.
func (r *Repository) List() []string {
	names := []string{"minimal", "standard", "relaxed"}
	if r == nil || r.dir == "" {
		return names
	}
	seen := map[string]bool{"minimal": true, "standard": true, "relaxed": true}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return names
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		name := e.Name()[:len(e.Name())-len(".yaml")]
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	return names
}

// LoadFile reads and validates one profile file. Unset limits fall back to
// the default preset so a profile file only needs to spell its overrides.
func LoadFile(path string) (SandboxProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SandboxProfile{}, errors.Wrapf(err, errors.ProfileLoadFailed, "read profile file %s", path)
	}
	p := Standard()
	p.Name = ""
	if err := yaml.Unmarshal(data, &p); err != nil {
		return SandboxProfile{}, errors.Wrapf(err, errors.ProfileLoadFailed, "parse profile file %s", path)
	}
	if p.Name == "" {
		base := filepath.Base(path)
		p.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	if err := p.Validate(); err != nil {
		return SandboxProfile{}, err
	}
	return p, nil
}
