package proxy

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// beginServerConnect resolves and connects a freshly logged-in player to
// their initial backend, firing PlayerChooseInitialServer first so a
// subscriber can override the router's pick.
func beginServerConnect(ctx context.Context, player *connectedPlayer) {
	choose := &PlayerChooseInitialServer{player: player}
	player.proxy.event.Fire(choose)

	if initial := choose.InitialServer(); initial != nil {
		target, ok := initial.(*registeredServer)
		if ok {
			conn := newServerConnection(player, target)
			player.setConnectionInFlight(conn)
			if err := conn.connect(ctx); err == nil {
				player.setConnectionInFlight(nil)
				player.setConnectedServer(conn)
				target.addPlayer(player)
				return
			}
			player.setConnectionInFlight(nil)
		}
	}

	if err := player.proxy.routeInitialServer(ctx, player, ""); err != nil {
		player.Disconnect(kickedFromServerComponent("No available servers: " + err.Error()))
	}
}

// ConnectionRequest is returned by Player.CreateConnectionRequest and
// lets the caller (typically a command) trigger a server switch and
// learn whether it succeeded.
type ConnectionRequest interface {
	Connect(ctx context.Context) (Status, error)
}

// Status describes the outcome of a ConnectionRequest.
type Status int

const (
	StatusSuccess Status = iota
	StatusAlreadyConnected
	StatusConnectionInProgress
	StatusConnectionCancelled
	StatusServerDisconnected
)

type connectionRequest struct {
	player *connectedPlayer
	target RegisteredServer
}

func (p *connectedPlayer) CreateConnectionRequest(target RegisteredServer) ConnectionRequest {
	return &connectionRequest{player: p, target: target}
}

var ErrSwitchAborted = errors.New("SwitchAborted")

// Connect performs the server-switch handoff described for an in-Play
// player: dial the new backend in the background while the player stays
// attached to the old one, then once the new backend reaches Play,
// stop forwarding the old backend and splice in the new one.
func (r *connectionRequest) Connect(ctx context.Context) (Status, error) {
	p := r.player
	if current := p.connectedServer(); current != nil && sameServer(current.Server(), r.target) {
		return StatusAlreadyConnected, nil
	}
	if p.connectionInFlight() != nil {
		return StatusConnectionInProgress, nil
	}

	target, ok := r.target.(*registeredServer)
	if !ok {
		return StatusConnectionCancelled, fmt.Errorf("unknown RegisteredServer implementation")
	}

	pre := &ServerPreConnect{player: p, original: target}
	p.proxy.event.Fire(pre)
	if pre.Cancelled() {
		return StatusConnectionCancelled, nil
	}
	if chosen, ok := pre.Server().(*registeredServer); ok {
		target = chosen
	}

	newConn := newServerConnection(p, target)
	p.setConnectionInFlight(newConn)
	defer p.setConnectionInFlight(nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return newConn.connect(gctx) })
	if err := g.Wait(); err != nil {
		return StatusServerDisconnected, err
	}

	// The backend is logged in, but the player must keep relaying through
	// the old server until the new one actually reaches Play: only then
	// can we sever the old connection without a blank-screen gap.
	if err := newConn.awaitJoin(ctx); err != nil {
		newConn.disconnect()
		return StatusServerDisconnected, fmt.Errorf("%w: %v", ErrSwitchAborted, err)
	}

	old := p.connectedServer()
	p.setConnectedServer(newConn)
	target.addPlayer(p)
	if old != nil {
		old.server.removePlayer(p)
		old.disconnect()
	}
	return StatusSuccess, nil
}

func sameServer(a, b RegisteredServer) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ServerInfo().Name() == b.ServerInfo().Name()
}
