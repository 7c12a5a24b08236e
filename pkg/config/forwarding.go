package config

import (
	"fmt"
	"os"
)

// ForwardingMode selects how player identity is injected into the
// backend handshake.
type ForwardingMode string

const (
	None        ForwardingMode = "none"
	Legacy      ForwardingMode = "legacy"
	BungeeGuard ForwardingMode = "bungeeguard"
	Modern      ForwardingMode = "modern"
)

// Forwarding configures the default (and per-server override) identity
// forwarding scheme, and the shared secret MODERN/BUNGEEGUARD need.
type Forwarding struct {
	Mode ForwardingMode `mapstructure:"mode"`
	// SecretFile, if set, is read once at boot and cached.
	SecretFile string `mapstructure:"secretFile"`
	// PerServer overrides Mode for specific server names.
	PerServer map[string]ForwardingMode `mapstructure:"perServer"`

	secret []byte
}

// VelocityForwardingSecretEnv is the environment variable fallback for
// the forwarding secret.
const VelocityForwardingSecretEnv = "VELOCITY_FORWARDING_SECRET"

// LoadSecret resolves the forwarding secret from SecretFile or the
// environment variable, caching the result.
func (f *Forwarding) LoadSecret() ([]byte, error) {
	if f.secret != nil {
		return f.secret, nil
	}
	if f.SecretFile != "" {
		b, err := os.ReadFile(f.SecretFile)
		if err != nil {
			return nil, fmt.Errorf("reading forwarding secret file: %w", err)
		}
		f.secret = trimNewline(b)
		return f.secret, nil
	}
	if v, ok := os.LookupEnv(VelocityForwardingSecretEnv); ok && v != "" {
		f.secret = []byte(v)
		return f.secret, nil
	}
	return nil, nil
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

// ModeFor returns the forwarding mode for serverName, honoring a
// per-server override.
func (f *Forwarding) ModeFor(serverName string) ForwardingMode {
	if m, ok := f.PerServer[serverName]; ok {
		return m
	}
	return f.Mode
}
