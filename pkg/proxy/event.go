package proxy

import (
	"github.com/skTanky/Velocity-CTD/pkg/proto/packet"
	"github.com/skTanky/Velocity-CTD/pkg/proxy/message"
	"github.com/skTanky/Velocity-CTD/pkg/proxy/player"
	"github.com/skTanky/Velocity-CTD/pkg/util/gameprofile"
)

// LoginStatus describes why a connectedPlayer's teardown ran.
type LoginStatus int

const (
	SuccessfulLoginStatus LoginStatus = iota
	ConflictingLoginStatus
	CanceledByProxyLoginStatus
	CanceledByUserLoginStatus
)

// ListenerBound fires once the frontend listener is accepting connections.
type ListenerBound struct{ Addr string }

// ListenerClose fires after the frontend listener has stopped accepting.
type ListenerClose struct{ Addr string }

// PreLogin fires after Handshake/LoginStart but before any authentication
// work, letting a subscriber deny the login or force offline mode.
type PreLogin struct {
	username string
	conn     *minecraftConn

	denied  bool
	reason  string
	offline bool
}

func (e *PreLogin) Username() string         { return e.username }
func (e *PreLogin) Deny(reason string)       { e.denied = true; e.reason = reason }
func (e *PreLogin) Denied() (string, bool)   { return e.reason, e.denied }
func (e *PreLogin) ForceOfflineMode()        { e.offline = true }
func (e *PreLogin) OfflineModeForced() bool  { return e.offline }

// GameProfileRequest fires once a GameProfile has been resolved, letting
// a subscriber swap in its own before LoginSuccess is sent.
type GameProfileRequest struct {
	username   string
	onlineMode bool
	original   gameprofile.GameProfile
	replace    *gameprofile.GameProfile
}

func (e *GameProfileRequest) Username() string                        { return e.username }
func (e *GameProfileRequest) OnlineMode() bool                        { return e.onlineMode }
func (e *GameProfileRequest) OriginalProfile() gameprofile.GameProfile { return e.original }
func (e *GameProfileRequest) SetGameProfile(p gameprofile.GameProfile) { e.replace = &p }
func (e *GameProfileRequest) GameProfile() gameprofile.GameProfile {
	if e.replace != nil {
		return *e.replace
	}
	return e.original
}

// ServerPreConnect fires immediately before the proxy dials a candidate
// backend, letting a subscriber redirect or cancel the attempt.
type ServerPreConnect struct {
	player      *connectedPlayer
	original    RegisteredServer
	replacement RegisteredServer
	cancelled   bool
}

func (e *ServerPreConnect) Player() Player { return e.player }
func (e *ServerPreConnect) Server() RegisteredServer {
	if e.replacement != nil {
		return e.replacement
	}
	return e.original
}
func (e *ServerPreConnect) SetServer(s RegisteredServer) { e.replacement = s }
func (e *ServerPreConnect) Cancel()                      { e.cancelled = true }
func (e *ServerPreConnect) Cancelled() bool              { return e.cancelled }

// PlayerChooseInitialServer fires once during login to pick the first
// backend a freshly connected player lands on.
type PlayerChooseInitialServer struct {
	player        *connectedPlayer
	initialServer RegisteredServer
}

func (e *PlayerChooseInitialServer) Player() Player                { return e.player }
func (e *PlayerChooseInitialServer) InitialServer() RegisteredServer { return e.initialServer }
func (e *PlayerChooseInitialServer) SetInitialServer(s RegisteredServer) {
	e.initialServer = s
}

// KickedFromServer fires when a backend disconnects a player who was
// already in Play, letting a subscriber choose the next hop.
type KickedFromServer struct {
	player      *connectedPlayer
	server      RegisteredServer
	duringLogin bool

	nextServer RegisteredServer
	disconnect bool
}

func (e *KickedFromServer) Player() Player                { return e.player }
func (e *KickedFromServer) Server() RegisteredServer       { return e.server }
func (e *KickedFromServer) DuringServerConnect() bool      { return e.duringLogin }
func (e *KickedFromServer) RedirectTo(s RegisteredServer)  { e.nextServer = s }
func (e *KickedFromServer) NextServer() (RegisteredServer, bool) {
	return e.nextServer, e.nextServer != nil
}
func (e *KickedFromServer) DisconnectPlayer() { e.disconnect = true }
func (e *KickedFromServer) WillDisconnect() bool { return e.disconnect }

// DisconnectEvent fires once a connectedPlayer has fully disconnected.
type DisconnectEvent struct {
	player      *connectedPlayer
	loginStatus LoginStatus
}

func (e *DisconnectEvent) Player() Player           { return e.player }
func (e *DisconnectEvent) LoginStatus() LoginStatus { return e.loginStatus }

// PlayerSettingsChangedEvent fires whenever a player sends a new
// ClientSettings packet.
type PlayerSettingsChangedEvent struct {
	player   *connectedPlayer
	settings player.Settings
}

func (e *PlayerSettingsChangedEvent) Player() Player             { return e.player }
func (e *PlayerSettingsChangedEvent) Settings() player.Settings { return e.settings }

// PluginMessageEvent fires for a plugin channel message the core
// doesn't consume itself, so an external subscriber can inspect it.
type PluginMessageEvent struct {
	source     message.ChannelMessageSource
	target     message.ChannelMessageSink
	identifier message.ChannelIdentifier
	data       []byte
	forward    bool
}

func (e *PluginMessageEvent) Source() message.ChannelMessageSource { return e.source }
func (e *PluginMessageEvent) Target() message.ChannelMessageSink   { return e.target }
func (e *PluginMessageEvent) Identifier() message.ChannelIdentifier {
	return e.identifier
}
func (e *PluginMessageEvent) Data() []byte         { return e.data }
func (e *PluginMessageEvent) SetForward(v bool)    { e.forward = v }
func (e *PluginMessageEvent) Forward() bool        { return e.forward }
func (e *PluginMessageEvent) Allowed() bool        { return e.forward }

// CommandExecuteEvent fires for every chat message prefixed with '/'.
type CommandExecuteEvent struct {
	source      *connectedPlayer
	commandline string
	denied      bool
}

func (e *CommandExecuteEvent) Source() Player      { return e.source }
func (e *CommandExecuteEvent) Command() string      { return e.commandline }
func (e *CommandExecuteEvent) Deny()                { e.denied = true }
func (e *CommandExecuteEvent) Allowed() bool         { return !e.denied }

// PlayerChatEvent fires for every non-command chat message a player
// sends, ahead of forwarding it to their current backend.
type PlayerChatEvent struct {
	player  *connectedPlayer
	message string
	denied  bool
}

func (e *PlayerChatEvent) Player() Player  { return e.player }
func (e *PlayerChatEvent) Message() string { return e.message }
func (e *PlayerChatEvent) Deny()           { e.denied = true }
func (e *PlayerChatEvent) Allowed() bool   { return !e.denied }

// ConnectionHandshakeEvent fires right after a client's Handshake packet
// is decoded, before any Status/Login routing decision is made.
type ConnectionHandshakeEvent struct {
	Handshake *packet.Handshake
	conn      *minecraftConn
}
