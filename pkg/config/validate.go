package config

import "fmt"

// Validate checks cfg for configuration errors that must refuse proxy
// startup: an empty bind address, a try/forced-host entry naming an
// unknown server, or a forwarding mode other than NONE with no usable
// secret. Packet-id overlap is checked separately, inside
// pkg/proto/state, at package init time (a code-level configuration
// error, not a user one).
func Validate(cfg *Config) error {
	if cfg.Bind == "" {
		return fmt.Errorf("bind address must not be empty")
	}
	if len(cfg.Servers) == 0 {
		return fmt.Errorf("at least one server must be configured")
	}
	for _, name := range cfg.Try {
		if _, ok := cfg.Servers[name]; !ok {
			return fmt.Errorf("try order references unknown server %q", name)
		}
	}
	for host, candidates := range cfg.ForcedHosts {
		for _, name := range candidates {
			if _, ok := cfg.Servers[name]; !ok {
				return fmt.Errorf("forced host %q references unknown server %q", host, name)
			}
		}
	}
	if cfg.Forwarding.Mode != None {
		secret, err := cfg.Forwarding.LoadSecret()
		if err != nil {
			return fmt.Errorf("loading forwarding secret: %w", err)
		}
		if len(secret) == 0 {
			return fmt.Errorf("forwarding mode %q requires a non-empty secret (forwarding.secretFile or %s)",
				cfg.Forwarding.Mode, VelocityForwardingSecretEnv)
		}
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 30000
	}
	if cfg.ConnectionTimeout <= 0 {
		cfg.ConnectionTimeout = 5000
	}
	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = 30000
	}
	if cfg.SwitchTimeout <= 0 {
		cfg.SwitchTimeout = 10000
	}
	if cfg.Compression.Threshold == 0 {
		cfg.Compression.Threshold = 256
	}
	if cfg.Compression.Threshold < 0 {
		cfg.Compression.Threshold = -1
	}
	return nil
}
