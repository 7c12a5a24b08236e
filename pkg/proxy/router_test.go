package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skTanky/Velocity-CTD/pkg/config"
)

func newTestProxy(t *testing.T, cfg config.Config) *Proxy {
	t.Helper()
	if cfg.Servers == nil {
		cfg.Servers = map[string]string{}
	}
	return New(cfg)
}

func TestCandidateOrderUsesTryOrderByDefault(t *testing.T) {
	p := newTestProxy(t, config.Config{
		Servers: map[string]string{"lobby": "127.0.0.1:25566", "survival": "127.0.0.1:25567"},
		Try:     []string{"lobby", "survival"},
	})
	assert.Equal(t, []string{"lobby", "survival"}, p.candidateOrder("anything.example.com"))
}

func TestCandidateOrderPrefersForcedHost(t *testing.T) {
	p := newTestProxy(t, config.Config{
		Servers: map[string]string{"lobby": "127.0.0.1:25566", "creative": "127.0.0.1:25568"},
		Try:     []string{"lobby"},
		ForcedHosts: map[string][]string{
			"creative.example.com": {"creative"},
		},
	})
	assert.Equal(t, []string{"creative"}, p.candidateOrder("creative.example.com"))
	assert.Equal(t, []string{"lobby"}, p.candidateOrder("anything-else.example.com"))
}

func TestCandidateOrderForcedHostNormalizesVhost(t *testing.T) {
	p := newTestProxy(t, config.Config{
		Servers:     map[string]string{"creative": "127.0.0.1:25568"},
		ForcedHosts: map[string][]string{"creative.example.com": {"creative"}},
	})
	// Trailing dot and mixed case and the legacy Forge separator must all
	// normalize to the same forced-host lookup key.
	assert.Equal(t, []string{"creative"}, p.candidateOrder("Creative.Example.com."))
	assert.Equal(t, []string{"creative"}, p.candidateOrder("creative.example.com\x00FML\x00"))
}

func TestPushUnreachableToEndPreservesRelativeOrder(t *testing.T) {
	p := newTestProxy(t, config.Config{
		Servers: map[string]string{"a": "127.0.0.1:1", "c": "127.0.0.1:2"},
	})
	order := pushUnreachableToEnd(p, []string{"a", "b", "c", "d"})
	assert.Equal(t, []string{"a", "c", "b", "d"}, order)
}

func TestSortByPopulationDescIsStable(t *testing.T) {
	p := newTestProxy(t, config.Config{
		Servers: map[string]string{"empty1": "127.0.0.1:1", "full": "127.0.0.1:2", "empty2": "127.0.0.1:3"},
	})
	full := p.server("full")
	full.addPlayer(&connectedPlayer{})
	full.addPlayer(&connectedPlayer{})

	order := sortByPopulationDesc(p, []string{"empty1", "full", "empty2"})
	// "full" moves to the front; the two empty servers keep their
	// original relative order since the sort must be stable.
	assert.Equal(t, []string{"full", "empty1", "empty2"}, order)
}

func TestCandidateOrderAppliesDynamicThenPopulationFallback(t *testing.T) {
	p := newTestProxy(t, config.Config{
		Servers:                      map[string]string{"quiet": "127.0.0.1:1", "busy": "127.0.0.1:2"},
		Try:                          []string{"unregistered", "quiet", "busy"},
		EnableDynamicFallbacks:       true,
		EnableMostPopulatedFallbacks: true,
	})
	busy := p.server("busy")
	busy.addPlayer(&connectedPlayer{})

	order := p.candidateOrder("anything.example.com")
	assert.Equal(t, []string{"busy", "quiet", "unregistered"}, order)
}

func TestRouteInitialServerFailsWhenNoServersConfigured(t *testing.T) {
	p := newTestProxy(t, config.Config{})
	err := p.routeInitialServer(nil, &connectedPlayer{}, "")
	assert.ErrorIs(t, err, ErrNoAvailableServers)
}
