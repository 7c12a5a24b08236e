package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Bind:    "0.0.0.0:25565",
		Servers: map[string]string{"lobby": "127.0.0.1:25566"},
		Try:     []string{"lobby"},
	}
}

func TestValidateRejectsEmptyBind(t *testing.T) {
	cfg := validConfig()
	cfg.Bind = ""
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsNoServers(t *testing.T) {
	cfg := validConfig()
	cfg.Servers = nil
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsUnknownTryServer(t *testing.T) {
	cfg := validConfig()
	cfg.Try = []string{"does-not-exist"}
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsUnknownForcedHostServer(t *testing.T) {
	cfg := validConfig()
	cfg.ForcedHosts = map[string][]string{"play.example.com": {"does-not-exist"}}
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsForwardingModeWithoutSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Forwarding.Mode = Modern
	t.Setenv("VELOCITY_FORWARDING_SECRET", "")
	assert.Error(t, Validate(cfg))
}

func TestValidateAcceptsForwardingModeWithEnvSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Forwarding.Mode = Modern
	t.Setenv(VelocityForwardingSecretEnv, "super-secret")
	require.NoError(t, Validate(cfg))
}

func TestValidateFillsInDefaultTimeouts(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 30000, cfg.ReadTimeout)
	assert.Equal(t, 5000, cfg.ConnectionTimeout)
	assert.Equal(t, 30000, cfg.LoginTimeout)
	assert.Equal(t, 10000, cfg.SwitchTimeout)
	assert.Equal(t, 256, cfg.Compression.Threshold)
}

func TestValidateNegativeCompressionThresholdDisables(t *testing.T) {
	cfg := validConfig()
	cfg.Compression.Threshold = -5
	require.NoError(t, Validate(cfg))
	assert.Equal(t, -1, cfg.Compression.Threshold)
}

func TestForwardingModeForHonorsPerServerOverride(t *testing.T) {
	f := &Forwarding{Mode: None, PerServer: map[string]ForwardingMode{"creative": Legacy}}
	assert.Equal(t, Legacy, f.ModeFor("creative"))
	assert.Equal(t, None, f.ModeFor("survival"))
}

func TestNormalizeHostStripsTrailingDotCaseAndForgeSuffix(t *testing.T) {
	assert.Equal(t, "play.example.com", NormalizeHost("Play.Example.com."))
	assert.Equal(t, "play.example.com", NormalizeHost("play.example.com\x00FML\x00"))
}
