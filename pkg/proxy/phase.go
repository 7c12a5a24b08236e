package proxy

import (
	"strings"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/packet/plugin"
	"github.com/skTanky/Velocity-CTD/pkg/proxy/forge"
)

// connectionType is determined from the handshake and decides which
// clientConnectionPhase a fresh connectedPlayer starts in.
type connectionType int

const (
	undeterminedConnectionType connectionType = iota
	vanillaConnectionType
	legacyForgeConnectionType
	undetermined17ConnectionType
)

// handshakeConnectionType classifies a handshake the same way the
// client's reported protocol version and server address are inspected
// for the legacy "\x00FML\x00" suffix Forge appends pre-1.13.
func handshakeConnectionType(protocolVersion int, serverAddress string) connectionType {
	if protocolVersion < int(proto.Minecraft_1_13) && strings.HasSuffix(serverAddress, forge.HandshakeHostnameToken) {
		return legacyForgeConnectionType
	}
	if protocolVersion <= int(proto.Minecraft_1_7_6) {
		return undetermined17ConnectionType
	}
	return vanillaConnectionType
}

func (t connectionType) initialClientPhase() clientConnectionPhase {
	if t == legacyForgeConnectionType {
		return &legacyForgeHandshakeClientPhase{}
	}
	return vanillaClientPhase{}
}

// clientConnectionPhase models where a connectedPlayer is in an
// optional legacy Forge modded handshake. Full FML support is
// best-effort: this is a minimal state machine, not a complete
// reimplementation of FML's handshake protocol.
type clientConnectionPhase interface {
	// consideredComplete reports whether plugin messages may now be
	// forwarded freely between client and backend.
	consideredComplete() bool
	// handle processes a plugin message possibly belonging to the
	// handshake; it returns true if the message was consumed.
	handle(server *serverConnection, message *plugin.Message) bool
	// onFirstJoin runs once, right after the player's first JoinGame.
	onFirstJoin(player *connectedPlayer)
	// resetConnectionPhase sends whatever reset packet this phase
	// requires after a server switch.
	resetConnectionPhase(player *connectedPlayer)
}

type vanillaClientPhase struct{}

func (vanillaClientPhase) consideredComplete() bool { return true }
func (vanillaClientPhase) handle(*serverConnection, *plugin.Message) bool { return false }
func (vanillaClientPhase) onFirstJoin(*connectedPlayer)                   {}
func (vanillaClientPhase) resetConnectionPhase(*connectedPlayer)         {}

// legacyForgeHandshakeClientPhase tracks a pre-1.13 FML handshake just
// enough to know when it has completed, so plugin messages aren't
// forwarded to the backend before the mod list exchange is done.
type legacyForgeHandshakeClientPhase struct {
	completed bool
}

func (p *legacyForgeHandshakeClientPhase) consideredComplete() bool { return p.completed }

func (p *legacyForgeHandshakeClientPhase) handle(server *serverConnection, message *plugin.Message) bool {
	if message.Channel != forge.LegacyHandshakeChannel {
		return false
	}
	// FML|HS traffic is consumed here and not forwarded. FML's internal
	// states are not modeled and no handshake progress is recorded;
	// completion is only set by onFirstJoin.
	if server != nil {
		_ = server.ensureConnectedQuiet()
	}
	return true
}

func (p *legacyForgeHandshakeClientPhase) onFirstJoin(player *connectedPlayer) {
	p.completed = true
}

func (p *legacyForgeHandshakeClientPhase) resetConnectionPhase(player *connectedPlayer) {
	_ = player.WritePacket(&plugin.Message{
		Channel: forge.LegacyHandshakeChannel,
		Data:    []byte{0},
	})
}

// backendConnectionPhase mirrors clientConnectionPhase but for the
// proxy -> backend side of a serverConnection.
type backendConnectionPhase int

const (
	unknownBackendPhase backendConnectionPhase = iota
	vanillaBackendPhase
	inTransitionBackendPhase
	completedBackendPhase
)

func (p backendConnectionPhase) consideredComplete() bool {
	return p != inTransitionBackendPhase
}
