package proxy

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"net"
	"time"

	"go.minekube.com/common/minecraft/component"
	"go.uber.org/zap"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/packet"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
	"github.com/skTanky/Velocity-CTD/pkg/util/gameprofile"
	"github.com/skTanky/Velocity-CTD/pkg/util/uuid"
)

// loginSessionHandler drives a client through LoginStart, optional
// online-mode encryption/authentication, optional compression, and
// LoginSuccess, then hands off to the post-login finalize handler.
type loginSessionHandler struct {
	conn  *minecraftConn
	vhost net.Addr

	verifyToken []byte
	username    string
	declaredID  uuid.UUID
	hasDeclared bool
}

func newLoginSessionHandler(conn *minecraftConn, vhost net.Addr) sessionHandler {
	return &loginSessionHandler{conn: conn, vhost: vhost}
}

var _ sessionHandler = (*loginSessionHandler)(nil)

func (h *loginSessionHandler) activated()    {}
func (h *loginSessionHandler) deactivated()  {}
func (h *loginSessionHandler) disconnected() {}

func (h *loginSessionHandler) handleUnknownPacket(p *proto.PacketContext) {
	_ = h.conn.close()
}

func (h *loginSessionHandler) handlePacket(ctx context.Context, p proto.Packet) {
	switch typed := p.(type) {
	case *packet.LoginStart:
		h.handleLoginStart(ctx, typed)
	case *packet.EncryptionResponse:
		h.handleEncryptionResponse(ctx, typed)
	default:
		_ = h.conn.close()
	}
}

func (h *loginSessionHandler) handleLoginStart(ctx context.Context, p *packet.LoginStart) {
	h.username = p.Name
	h.hasDeclared = p.HasUUID
	h.declaredID = p.UUID

	pre := &PreLogin{username: p.Name, conn: h.conn}
	h.conn.proxy.event.Fire(pre)
	if reason, denied := pre.Denied(); denied {
		_ = h.conn.closeWith(packet.DisconnectWithProtocol(&component.Text{Content: reason}, h.conn.Protocol()))
		return
	}

	onlineMode := h.conn.config().OnlineMode && !pre.OfflineModeForced()
	if !onlineMode {
		h.finishLogin(ctx, gameprofile.GameProfile{
			Id:   uuid.OfflinePlayer(p.Name),
			Name: p.Name,
		}, false)
		return
	}

	key, err := rsaKeyPair()
	if err != nil {
		zap.S().Errorf("failed to generate RSA key pair for login encryption: %v", err)
		_ = h.conn.close()
		return
	}
	h.conn.loginRSAKey = key

	verify := make([]byte, 4)
	_, _ = rand.Read(verify)
	h.verifyToken = verify

	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		_ = h.conn.close()
		return
	}
	_ = h.conn.WritePacket(&packet.EncryptionRequest{
		PublicKey:   pub,
		VerifyToken: verify,
	})
}

func (h *loginSessionHandler) handleEncryptionResponse(ctx context.Context, p *packet.EncryptionResponse) {
	key := h.conn.loginRSAKey
	if key == nil {
		_ = h.conn.close()
		return
	}

	verify, err := rsa.DecryptPKCS1v15(rand.Reader, key, p.VerifyToken)
	if err != nil || subtle.ConstantTimeCompare(verify, h.verifyToken) != 1 {
		_ = h.conn.closeWith(packet.DisconnectWithProtocol(
			&component.Text{Content: "Unable to verify encryption token."}, h.conn.Protocol()))
		return
	}

	secret, err := rsa.DecryptPKCS1v15(rand.Reader, key, p.SharedSecret)
	if err != nil {
		_ = h.conn.close()
		return
	}
	if err := h.conn.enableEncryption(secret); err != nil {
		_ = h.conn.close()
		return
	}

	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		_ = h.conn.close()
		return
	}
	serverHash := serverIDHash(secret, pub)

	go h.authenticate(ctx, serverHash)
}

func (h *loginSessionHandler) authenticate(ctx context.Context, serverHash string) {
	authCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	profile, err := h.conn.proxy.authenticator.HasJoined(authCtx, h.username, serverHash)
	if err != nil {
		zap.S().Warnf("session authenticator call failed for %q: %v", h.username, err)
		_ = h.conn.closeWith(packet.DisconnectWithProtocol(
			&component.Text{Content: "Failed to verify username with Mojang's session servers."}, h.conn.Protocol()))
		return
	}
	if profile == nil {
		_ = h.conn.closeWith(packet.DisconnectWithProtocol(
			&component.Text{Content: "You do not have a valid session. Please log back in, including restarting your game and launcher."}, h.conn.Protocol()))
		return
	}

	h.finishLogin(ctx, *profile, true)
}

func (h *loginSessionHandler) finishLogin(ctx context.Context, profile gameprofile.GameProfile, onlineMode bool) {
	req := &GameProfileRequest{username: h.username, onlineMode: onlineMode, original: profile}
	h.conn.proxy.event.Fire(req)
	profile = req.GameProfile()

	player := newConnectedPlayer(h.conn, &profile, h.vhost, onlineMode)
	if !h.conn.proxy.connect.canRegisterConnection(player) {
		_ = h.conn.closeWith(packet.DisconnectWithProtocol(
			&component.Text{Content: "You are already connected to this proxy."}, h.conn.Protocol()))
		return
	}

	if threshold := h.conn.config().Compression.Threshold; threshold >= 0 {
		_ = h.conn.WritePacket(&packet.SetCompression{Threshold: threshold})
		_ = h.conn.SetCompressionThreshold(threshold)
	}

	_ = h.conn.WritePacket(&packet.LoginSuccess{
		UUID:       profile.Id,
		Name:       profile.Name,
		Properties: profile.Properties,
	})

	h.conn.proxy.connect.registerConnection(player)

	if h.conn.Protocol().GreaterEqual(proto.Minecraft_1_20_2) {
		h.conn.setSessionHandler(newAwaitLoginAcknowledgedHandler(player))
		return
	}
	h.conn.setState(state.Play)
	beginServerConnect(ctx, player)
}

// awaitLoginAcknowledgedHandler waits for the client's LoginAcknowledged
// (1.20.2+) before moving to the Config state and dialing a backend.
type awaitLoginAcknowledgedHandler struct {
	player *connectedPlayer
}

func newAwaitLoginAcknowledgedHandler(player *connectedPlayer) sessionHandler {
	return &awaitLoginAcknowledgedHandler{player: player}
}

var _ sessionHandler = (*awaitLoginAcknowledgedHandler)(nil)

func (h *awaitLoginAcknowledgedHandler) activated()    {}
func (h *awaitLoginAcknowledgedHandler) deactivated()  {}
func (h *awaitLoginAcknowledgedHandler) disconnected() { h.player.teardown() }

func (h *awaitLoginAcknowledgedHandler) handleUnknownPacket(p *proto.PacketContext) {
	_ = h.player.close()
}

func (h *awaitLoginAcknowledgedHandler) handlePacket(ctx context.Context, p proto.Packet) {
	if _, ok := p.(*packet.LoginAcknowledged); !ok {
		_ = h.player.close()
		return
	}
	h.player.setState(state.Config)
	beginServerConnect(ctx, h.player)
}

// player_ exposes the underlying player for the "disconnected" logging
// hook in minecraftConn.closeKnown.
func (h *awaitLoginAcknowledgedHandler) player_() *connectedPlayer { return h.player }

// rsaKeyPair generates a fresh 1024-bit RSA key for one login's
// encryption handshake. 1024 bits matches the key size the Notchian
// client expects to receive in EncryptionRequest.
func rsaKeyPair() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, 1024)
}
