// Package config defines the proxy's configuration schema, loaded via
// viper and validated once at startup.
package config

import (
	"net"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerCaser = cases.Lower(language.Und)

// Config is the root configuration object, unmarshaled by viper from a
// YAML file (or environment overrides).
type Config struct {
	Debug bool `mapstructure:"debug"`

	Bind string `mapstructure:"bind"`

	OnlineMode bool `mapstructure:"onlineMode"`

	// ReadTimeout and ConnectionTimeout are in milliseconds, matching the
	// teacher's connection.go usage (time.Duration(cfg.ReadTimeout) *
	// time.Millisecond).
	ReadTimeout       int `mapstructure:"readTimeout"`
	ConnectionTimeout int `mapstructure:"connectionTimeout"`

	// LoginTimeout and SwitchTimeout bound the non-Play states and an
	// in-flight server switch respectively.
	LoginTimeout  int `mapstructure:"loginTimeout"`
	SwitchTimeout int `mapstructure:"switchTimeout"`

	Compression Compression `mapstructure:"compressionThreshold"`

	Servers   map[string]string   `mapstructure:"servers"`
	Try       []string            `mapstructure:"try"`
	ForcedHosts map[string][]string `mapstructure:"forcedHosts"`

	EnableDynamicFallbacks        bool `mapstructure:"enableDynamicFallbacks"`
	EnableMostPopulatedFallbacks  bool `mapstructure:"enableMostPopulatedFallbacks"`
	FailoverOnUnexpectedDisconnect bool `mapstructure:"failoverOnUnexpectedServerDisconnect"`

	Forwarding Forwarding `mapstructure:"forwarding"`

	PingPassthrough bool `mapstructure:"pingPassthrough"`

	LoginRateLimit LoginRateLimit `mapstructure:"loginRateLimit"`
}

// Compression configures the compress filter.
type Compression struct {
	Threshold int `mapstructure:"threshold"`
	Level     int `mapstructure:"level"`
}

// LoginRateLimit bounds logins per source IP ahead of the session
// authenticator HTTP call, backed by golang.org/x/time/rate.
type LoginRateLimit struct {
	Enabled bool    `mapstructure:"enabled"`
	PerSec  float64 `mapstructure:"perSecond"`
	Burst   int     `mapstructure:"burst"`
}

// AttemptConnectionOrder returns the configured try order.
func (c *Config) AttemptConnectionOrder() []string {
	return append([]string(nil), c.Try...)
}

// ServerAddress returns the dial address for a configured server name.
func (c *Config) ServerAddress(name string) (string, bool) {
	addr, ok := c.Servers[name]
	return addr, ok
}

// ForcedHost looks up the candidate order for a lower-cased, normalized
// virtual host.
func (c *Config) ForcedHost(vhost string) ([]string, bool) {
	order, ok := c.ForcedHosts[NormalizeHost(vhost)]
	return order, ok
}

// NormalizeHost lower-cases vhost and strips the legacy Forge "\0FML\0"
// suffix, a ":port" suffix and a trailing dot.
func NormalizeHost(vhost string) string {
	h := lowerCaser.String(vhost)
	if i := strings.IndexByte(h, '\x00'); i >= 0 {
		h = h[:i]
	}
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	h = strings.TrimSuffix(h, ".")
	return h
}
