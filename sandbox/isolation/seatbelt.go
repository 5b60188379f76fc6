package isolation

import (
	"fmt"
	"strings"

	"agentcage/sandbox/profile"
)

// GenerateSeatbeltProfile renders a profile into SBPL for sandbox-exec.
// Default-deny; everything the command may do is spelled out. The generator
// is pure so the output is testable on any platform.
func GenerateSeatbeltProfile(p profile.SandboxProfile) string {
	var b strings.Builder

	b.WriteString("(version 1)\n")
	fmt.Fprintf(&b, "; Profile: %s\n\n", p.Name)
	b.WriteString("(deny default)\n\n")

	b.WriteString("; Basic operations\n")
	b.WriteString("(allow signal (target self))\n")
	b.WriteString("(allow process-fork)\n")
	b.WriteString("(allow process-exec*)\n\n")

	b.WriteString("; Filesystem access\n")
	writeSeatbeltFileRules(&b, p.Filesystem)

	b.WriteString("\n; Network access\n")
	writeSeatbeltNetworkRules(&b, p.Network)

	b.WriteString("\n; System access\n")
	b.WriteString("(allow sysctl-read)\n")
	b.WriteString("(allow mach-lookup)\n")
	b.WriteString("(allow ipc-posix-shm-read-data)\n")

	return b.String()
}

func writeSeatbeltFileRules(b *strings.Builder, rules profile.FilesystemRules) {
	// baseline reads the dynamic loader and system frameworks need
	b.WriteString("(allow file-read* (literal \"/\"))\n")
	for _, base := range []string{"/usr", "/bin", "/sbin", "/Library", "/System", "/dev"} {
		fmt.Fprintf(b, "(allow file-read* (subpath %q))\n", base)
	}

	for _, r := range rules.Rules {
		if !r.Allow {
			continue
		}
		ops := seatbeltOps(r.Perms)
		if ops == "" {
			continue
		}
		fmt.Fprintf(b, "(allow %s (subpath %q))\n", ops, r.Prefix)
	}

	// deny rules last; in SBPL the last matching rule wins
	for _, prefix := range rules.DeniedPrefixes() {
		fmt.Fprintf(b, "(deny file-read* file-write* (subpath %q))\n", prefix)
	}
}

func seatbeltOps(p profile.Permission) string {
	var ops []string
	if p&profile.PermRead != 0 {
		ops = append(ops, "file-read*")
	}
	if p&profile.PermWrite != 0 {
		ops = append(ops, "file-write*")
	}
	if p&profile.PermExec != 0 {
		ops = append(ops, "process-exec*")
	}
	return strings.Join(ops, " ")
}

func writeSeatbeltNetworkRules(b *strings.Builder, rules profile.NetworkRules) {
	if !rules.Enabled {
		b.WriteString("(deny network*)\n")
		return
	}

	if rules.LocalhostOnly {
		b.WriteString("(allow network* (local ip \"localhost:*\"))\n")
		b.WriteString("(allow network* (local ip \"127.0.0.1:*\"))\n")
		b.WriteString("(allow network* (local ip \"::1:*\"))\n")
	} else {
		b.WriteString("(allow network*)\n")
	}

	for _, port := range rules.BlockedPorts {
		fmt.Fprintf(b, "(deny network* (remote tcp \"*:%d\"))\n", port)
	}
}
