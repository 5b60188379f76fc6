package profile

// gatewayPort is the control-plane port a sandboxed command must never reach;
// reaching it would let the command issue privileged requests as the agent.
const gatewayPort = 18789

// NetworkRules describes network policy. On Linux the Enabled flag gates the
// network namespace; the finer fields are consumed by the darwin profile
// generator and by profile files.
type NetworkRules struct {
	Enabled       bool     `yaml:"enabled"`
	LocalhostOnly bool     `yaml:"localhost_only"`
	AllowedHosts  []string `yaml:"allowed_hosts"`
	AllowedPorts  []uint16 `yaml:"allowed_ports"`
	BlockedPorts  []uint16 `yaml:"blocked_ports"`
}

// DisabledNetwork blocks all network access.
func DisabledNetwork() NetworkRules {
	return NetworkRules{}
}

// LocalhostNetwork permits loopback traffic only, with the control-plane
// port blocked.
func LocalhostNetwork() NetworkRules {
	return NetworkRules{
		Enabled:       true,
		LocalhostOnly: true,
		AllowedHosts:  []string{"localhost", "127.0.0.1"},
		BlockedPorts:  []uint16{gatewayPort},
	}
}

// EnabledNetwork permits outbound traffic except remote-shell, mail, and the
// control-plane ports.
func EnabledNetwork() NetworkRules {
	return NetworkRules{
		Enabled:      true,
		BlockedPorts: []uint16{22, 23, 25, gatewayPort},
	}
}
