package proxy

import (
	"context"
	"fmt"
	"net"

	"go.minekube.com/common/minecraft/component"

	"github.com/skTanky/Velocity-CTD/pkg/config"
	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/packet"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
	"github.com/skTanky/Velocity-CTD/pkg/util/netutil"
)

// handshakeSessionHandler is installed on every freshly accepted client
// connection; it only ever expects a single Handshake packet before
// handing off to the Status or Login session handler.
type handshakeSessionHandler struct {
	conn *minecraftConn
}

func newHandshakeSessionHandler(conn *minecraftConn) sessionHandler {
	return &handshakeSessionHandler{conn: conn}
}

var _ sessionHandler = (*handshakeSessionHandler)(nil)

func (h *handshakeSessionHandler) activated()   {}
func (h *handshakeSessionHandler) deactivated() {}
func (h *handshakeSessionHandler) disconnected() {}

func (h *handshakeSessionHandler) handleUnknownPacket(p *proto.PacketContext) {
	_ = h.conn.close()
}

func (h *handshakeSessionHandler) handlePacket(ctx context.Context, p proto.Packet) {
	hs, ok := p.(*packet.Handshake)
	if !ok {
		_ = h.conn.close()
		return
	}
	h.handleHandshake(ctx, hs)
}

func (h *handshakeSessionHandler) handleHandshake(ctx context.Context, hs *packet.Handshake) {
	vhost := netutil.NewAddr(fmt.Sprintf("%s:%d", hs.ServerAddress, hs.Port), "tcp")
	protocolVersion := proto.Protocol(hs.ProtocolVersion)

	h.conn.setProtocol(protocolVersion)

	switch hs.NextState {
	case packet.NextStatus:
		h.conn.setState(state.Status)
		h.conn.setSessionHandler(newStatusSessionHandler(h.conn, vhost))
	case packet.NextLogin, packet.NextTransfer:
		h.conn.setState(state.Login)
		h.handleLogin(ctx, hs, protocolVersion, vhost)
	default:
		_ = h.conn.close()
	}
}

func (h *handshakeSessionHandler) handleLogin(ctx context.Context, hs *packet.Handshake, protocolVersion proto.Protocol, vhost net.Addr) {
	if h.conn.proxy.loginQuota != nil && !h.conn.proxy.loginQuota.Allow(h.conn.RemoteAddr()) {
		_ = h.conn.closeWith(packet.DisconnectWithProtocol(
			&component.Text{Content: "You are logging in too fast, please calm down and retry."},
			protocolVersion))
		return
	}

	if cfg := h.conn.config(); cfg.Forwarding.Mode == config.Modern && protocolVersion.Lower(proto.Minecraft_1_13) {
		_ = h.conn.closeWith(packet.DisconnectWithProtocol(
			&component.Text{Content: "This server is only compatible with versions 1.13 and above."},
			protocolVersion))
		return
	}

	h.conn.setType(handshakeConnectionType(int(protocolVersion), hs.ServerAddress))

	h.conn.proxy.event.Fire(&ConnectionHandshakeEvent{Handshake: hs, conn: h.conn})

	h.conn.setSessionHandler(newLoginSessionHandler(h.conn, vhost))
}
