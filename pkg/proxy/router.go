package proxy

import (
	"context"
	"errors"
	"sort"

	"github.com/skTanky/Velocity-CTD/pkg/config"
)

// ErrNoAvailableServers is returned when every candidate in a try list
// failed and none produced a structured kick reason to surface instead.
var ErrNoAvailableServers = errors.New("no available servers")

// candidateOrder resolves the ordered list of backend names to attempt
// for vhost, per the forced-host/try-order/dynamic-fallback/
// most-populated-fallback algorithm.
func (p *Proxy) candidateOrder(vhost string) []string {
	cfg := p.config
	var order []string
	if names, ok := cfg.ForcedHost(vhost); ok {
		order = append([]string(nil), names...)
	} else {
		order = cfg.AttemptConnectionOrder()
	}

	if cfg.EnableDynamicFallbacks {
		order = pushUnreachableToEnd(p, order)
	}
	if cfg.EnableMostPopulatedFallbacks {
		order = sortByPopulationDesc(p, order)
	}
	return order
}

// pushUnreachableToEnd moves candidates the proxy currently can't reach
// (no registered server entry, standing in for "zero ping") to the end
// of order, preserving the relative order of both partitions.
func pushUnreachableToEnd(p *Proxy, order []string) []string {
	reachable := make([]string, 0, len(order))
	unreachable := make([]string, 0)
	for _, name := range order {
		if p.server(name) != nil {
			reachable = append(reachable, name)
		} else {
			unreachable = append(unreachable, name)
		}
	}
	return append(reachable, unreachable...)
}

// sortByPopulationDesc stably sorts order by current player count,
// descending, run after pushUnreachableToEnd so that step takes
// precedence over population.
func sortByPopulationDesc(p *Proxy, order []string) []string {
	sorted := append([]string(nil), order...)
	players := make(map[string]int, len(sorted))
	for _, name := range sorted {
		if s := p.server(name); s != nil {
			players[name] = s.Players()
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return players[sorted[i]] > players[sorted[j]]
	})
	return sorted
}

// routeInitialServer picks and connects the player to the first
// reachable candidate for their virtual host, in candidate order,
// failing the player over to the next candidate on connect/login
// failure. It returns the last error encountered if every candidate
// failed and none produced a kick reason.
func (p *Proxy) routeInitialServer(ctx context.Context, player *connectedPlayer, startAfter string) error {
	vhost := ""
	if player.virtualHost != nil {
		vhost = config.NormalizeHost(player.virtualHost.String())
	}
	order := p.candidateOrder(vhost)

	skip := startAfter != ""
	var lastErr error
	for _, name := range order {
		if skip {
			if name == startAfter {
				skip = false
			}
			continue
		}
		server := p.server(name)
		if server == nil {
			continue
		}

		event := &ServerPreConnect{player: player, original: server}
		p.event.Fire(event)
		if event.Cancelled() {
			continue
		}
		target, ok := event.Server().(*registeredServer)
		if !ok {
			target = server
		}

		conn := newServerConnection(player, target)
		player.setConnectionInFlight(conn)
		if err := conn.connect(ctx); err != nil {
			lastErr = err
			player.setConnectionInFlight(nil)
			continue
		}

		player.setConnectionInFlight(nil)
		player.setConnectedServer(conn)
		target.addPlayer(player)
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return ErrNoAvailableServers
}
