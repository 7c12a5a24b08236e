package proxy

import (
	"context"
	"fmt"
	"net"

	"github.com/skTanky/Velocity-CTD/pkg/config"
	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/packet"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
	"github.com/skTanky/Velocity-CTD/pkg/util/netutil"
)

// backendLoginSessionHandler drives the proxy -> backend half of
// Handshake/Login, encoding whichever identity-forwarding scheme the
// target server is configured for, then hands off to
// backendPlaySessionHandler once the backend reaches Play (or Config,
// for 1.20.2+ backends, immediately followed by Play).
type backendLoginSessionHandler struct {
	server *serverConnection
	conn   *minecraftConn

	done chan error
}

func newBackendLoginSessionHandler(server *serverConnection, conn *minecraftConn) *backendLoginSessionHandler {
	return &backendLoginSessionHandler{server: server, conn: conn, done: make(chan error, 1)}
}

var _ sessionHandler = (*backendLoginSessionHandler)(nil)

func (h *backendLoginSessionHandler) activated()    {}
func (h *backendLoginSessionHandler) deactivated()  {}
func (h *backendLoginSessionHandler) disconnected() {}

func (h *backendLoginSessionHandler) handleUnknownPacket(p *proto.PacketContext) {}

// start sends the initial Handshake+LoginStart and blocks until the
// backend either completes login or reports an error.
func (h *backendLoginSessionHandler) start(ctx context.Context) error {
	player := h.server.player
	protocol := player.Protocol()
	h.conn.setProtocol(protocol)

	mode := forwardingModeFor(h.conn.config(), h.server.server.info.Name())
	serverAddress := vhostString(player.virtualHost)
	if mode == config.Legacy || mode == config.BungeeGuard {
		var rewritten string
		var err error
		if mode == config.BungeeGuard {
			secret, _ := h.conn.config().Forwarding.LoadSecret()
			rewritten, err = rewriteBungeeGuardHandshake(serverAddress, player.RemoteAddr(), player.GameProfile(), secret)
		} else {
			rewritten, err = rewriteLegacyHandshake(serverAddress, player.RemoteAddr(), player.GameProfile())
		}
		if err != nil {
			return fmt.Errorf("encoding %s forwarding handshake: %w", mode, err)
		}
		serverAddress = rewritten
	}

	if err := h.conn.BufferPacket(&packet.Handshake{
		ProtocolVersion: int(protocol),
		ServerAddress:   serverAddress,
		Port:            25565,
		NextState:       packet.NextLogin,
	}); err != nil {
		return err
	}
	h.conn.setState(state.Login)
	if err := h.conn.WritePacket(&packet.LoginStart{
		Name:    player.Username(),
		HasUUID: protocol.GreaterEqual(proto.Minecraft_1_19),
		UUID:    player.Id(),
	}); err != nil {
		return err
	}

	h.conn.setSessionHandler(h)
	select {
	case err := <-h.done:
		return err
	case <-ctx.Done():
		return ErrServerConnectTimeout
	}
}

func (h *backendLoginSessionHandler) handlePacket(ctx context.Context, p proto.Packet) {
	switch typed := p.(type) {
	case *packet.Disconnect:
		h.done <- fmt.Errorf("backend kicked us during login: %s", typed.Reason)
	case *packet.EncryptionRequest:
		// Vanilla backends never request encryption from a proxy connection;
		// this would only happen if the backend mistakenly expects a real
		// client. Treat it as a fatal protocol error for this connection.
		h.done <- fmt.Errorf("backend unexpectedly requested encryption")
	case *packet.SetCompression:
		_ = h.conn.SetCompressionThreshold(typed.Threshold)
	case *packet.LoginPluginMessage:
		h.handleLoginPluginMessage(typed)
	case *packet.LoginSuccess:
		h.handleLoginSuccess(typed)
	default:
	}
}

func (h *backendLoginSessionHandler) handleLoginPluginMessage(p *packet.LoginPluginMessage) {
	cfg := h.conn.config()
	mode := forwardingModeFor(cfg, h.server.server.info.Name())
	if mode != config.Modern || p.Channel != modernForwardingChannel {
		_ = h.conn.WritePacket(&packet.LoginPluginResponse{MessageID: p.MessageID, Success: false})
		return
	}
	secret, _ := cfg.Forwarding.LoadSecret()
	data, err := createModernForwardingData(secret, h.server.player.RemoteAddr(), h.server.player.GameProfile(), h.conn.Protocol())
	if err != nil {
		h.done <- fmt.Errorf("encoding modern forwarding data: %w", err)
		return
	}
	_ = h.conn.WritePacket(&packet.LoginPluginResponse{MessageID: p.MessageID, Success: true, Data: data})
}

func (h *backendLoginSessionHandler) handleLoginSuccess(p *packet.LoginSuccess) {
	if h.conn.Protocol().GreaterEqual(proto.Minecraft_1_20_2) {
		_ = h.conn.WritePacket(&packet.LoginAcknowledged{})
		h.conn.setState(state.Config)
	} else {
		h.conn.setState(state.Play)
	}
	h.server.setPhase(completedBackendPhase)
	backendHandler := newBackendPlaySessionHandler(h.server, h.conn)
	h.conn.setSessionHandler(backendHandler)
	h.done <- nil
}

func vhostString(vhost net.Addr) string {
	if vhost == nil {
		return ""
	}
	return netutil.Host(vhost)
}
