package proxy

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skTanky/Velocity-CTD/pkg/config"
)

func TestLoginQuotaDisabledAlwaysAllows(t *testing.T) {
	q := newLoginQuota(config.LoginRateLimit{Enabled: false})
	addr := &net.TCPAddr{IP: net.ParseIP("203.0.113.5")}
	for i := 0; i < 100; i++ {
		assert.True(t, q.Allow(addr))
	}
}

func TestLoginQuotaEnforcesBurstThenBlocks(t *testing.T) {
	q := newLoginQuota(config.LoginRateLimit{Enabled: true, PerSec: 0.001, Burst: 2})
	addr := &net.TCPAddr{IP: net.ParseIP("203.0.113.5")}

	assert.True(t, q.Allow(addr))
	assert.True(t, q.Allow(addr))
	assert.False(t, q.Allow(addr), "third immediate login attempt should exceed the burst")
}

func TestLoginQuotaTracksSourcesIndependently(t *testing.T) {
	q := newLoginQuota(config.LoginRateLimit{Enabled: true, PerSec: 0.001, Burst: 1})
	a := &net.TCPAddr{IP: net.ParseIP("203.0.113.5")}
	b := &net.TCPAddr{IP: net.ParseIP("203.0.113.6")}

	assert.True(t, q.Allow(a))
	assert.False(t, q.Allow(a))
	assert.True(t, q.Allow(b), "a different source IP must have its own quota")
}
