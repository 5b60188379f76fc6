// Command profilegen writes the built-in sandbox profiles out as yaml files,
// as a starting point for site-specific profiles in the profile directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"agentcage/sandbox/profile"

	"gopkg.in/yaml.v3"
)

func main() {
	outputDir := flag.String("output-dir", "configs/profiles", "Directory to write profile files into")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	presets := map[string]profile.SandboxProfile{
		"minimal":  profile.Minimal(),
		"standard": profile.Standard(),
		"relaxed":  profile.Relaxed(),
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output directory failed: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(*outputDir, name+".yaml")
		if !*force {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(os.Stderr, "skip %s: already exists (use -force to overwrite)\n", path)
				continue
			}
		}
		data, err := yaml.Marshal(presets[name])
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode profile %q failed: %v\n", name, err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s failed: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
	}
}
