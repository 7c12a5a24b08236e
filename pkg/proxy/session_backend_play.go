package proxy

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/packet"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
)

// backendPlaySessionHandler relays packets from a backend server to the
// player's client connection, intercepting the handful of packets the
// core must interpret: JoinGame/Respawn (server-switch handoff),
// FinishConfiguration (Config -> Play transition), KeepAlive (ping
// tracking) and Disconnect (failover).
type backendPlaySessionHandler struct {
	server *serverConnection
	conn   *minecraftConn
}

func newBackendPlaySessionHandler(server *serverConnection, conn *minecraftConn) sessionHandler {
	return &backendPlaySessionHandler{server: server, conn: conn}
}

var _ sessionHandler = (*backendPlaySessionHandler)(nil)

func (h *backendPlaySessionHandler) activated()   {}
func (h *backendPlaySessionHandler) deactivated() {}

func (h *backendPlaySessionHandler) handleUnknownPacket(p *proto.PacketContext) {
	if client := h.clientConnIfForwardable(); client != nil {
		_ = client.Write(p.Payload)
	}
}

func (h *backendPlaySessionHandler) clientConnIfForwardable() *minecraftConn {
	if h.server.player.connectedServer() != h.server {
		// We're not (or no longer) this player's active backend, e.g. mid-switch.
		return nil
	}
	return h.server.player.minecraftConn
}

func (h *backendPlaySessionHandler) handlePacket(ctx context.Context, p proto.Packet) {
	switch typed := p.(type) {
	case *packet.JoinGame:
		h.handleJoinGame(typed)
	case *packet.FinishConfiguration:
		h.handleFinishConfiguration()
	case *packet.Disconnect:
		h.handleDisconnect(ctx, typed)
	case *packet.KeepAlive:
		h.server.lastPingId.Store(typed.RandomId)
		h.server.lastPingSent.Store(time.Now().UnixMilli())
		if client := h.clientConnIfForwardable(); client != nil {
			_ = client.WritePacket(typed)
		}
	default:
		if client := h.clientConnIfForwardable(); client != nil {
			_ = client.WritePacket(p)
		}
	}
}

func (h *backendPlaySessionHandler) handleJoinGame(joinGame *packet.JoinGame) {
	player := h.server.player
	cps, ok := player.SessionHandler().(*clientPlaySessionHandler)
	if !ok {
		newHandler := newClientPlaySessionHandler(player)
		player.setSessionHandler(newHandler)
		cps = newHandler
	}
	if !cps.handleBackendJoinGame(joinGame, h.server) {
		zap.S().Warnf("%s: failed to complete server switch handoff to %s", player, h.server.server.info.Name())
		_ = player.close()
	}
}

func (h *backendPlaySessionHandler) handleFinishConfiguration() {
	player := h.server.player
	_ = player.WritePacket(&packet.FinishConfiguration{})
	player.setState(state.Play)
}

func (h *backendPlaySessionHandler) handleDisconnect(ctx context.Context, p *packet.Disconnect) {
	player := h.server.player
	wasCurrent := player.connectedServer() == h.server

	kicked := &KickedFromServer{player: player, server: h.server.server, duringLogin: !h.server.completedJoin.Load()}
	player.proxy.event.Fire(kicked)

	if next, ok := kicked.NextServer(); ok && wasCurrent {
		h.tryFailover(ctx, next.(*registeredServer))
		return
	}

	cfg := player.proxy.Config()
	if wasCurrent && cfg.FailoverOnUnexpectedDisconnect && !kicked.WillDisconnect() {
		if target := player.nextServerToTry(h.server.server); target != nil {
			h.tryFailover(ctx, target.(*registeredServer))
			return
		}
	}

	_ = player.closeWith(packet.DisconnectWithProtocol(kickedFromServerComponent(p.Reason), player.Protocol()))
}

func (h *backendPlaySessionHandler) tryFailover(ctx context.Context, target *registeredServer) {
	player := h.server.player
	conn := newServerConnection(player, target)
	player.setConnectionInFlight(conn)
	if err := conn.connect(ctx); err != nil {
		player.setConnectionInFlight(nil)
		_ = player.closeWith(packet.DisconnectWithProtocol(kickedFromServerComponent(err.Error()), player.Protocol()))
		return
	}
	player.setConnectionInFlight(nil)
	player.setConnectedServer(conn)
	target.addPlayer(player)
}

// disconnected is invoked on an abrupt backend socket close (e.g. a
// reset) that produced no Disconnect packet to run through
// handleDisconnect. Mirror that path's failover behavior so an
// unexpected close doesn't strand the player on a dead connection.
func (h *backendPlaySessionHandler) disconnected() {
	player := h.server.player
	if player.connectedServer() != h.server {
		// We're not (or no longer) this player's active backend.
		return
	}

	cfg := player.proxy.Config()
	if cfg.FailoverOnUnexpectedDisconnect && h.server.completedJoin.Load() {
		if target := player.nextServerToTry(h.server.server); target != nil {
			h.tryFailover(context.Background(), target.(*registeredServer))
			return
		}
	}

	_ = player.closeWith(packet.DisconnectWithProtocol(
		kickedFromServerComponent("Lost connection to server"), player.Protocol()))
}
