// Package forge names the constants needed to recognize a (Legacy)
// Forge-modded client during handshake and plugin-message forwarding,
// without implementing the full FML handshake state machine. Mod
// support is treated as best-effort passthrough, not a core concern.
package forge

const (
	// HandshakeHostnameToken is the suffix legacy (pre-1.13) Forge
	// clients append to the handshake hostname field.
	HandshakeHostnameToken = "\x00FML\x00"

	// LegacyHandshakeChannel is the plugin message channel carrying the
	// FML handshake on 1.7-1.12 Forge clients/servers.
	LegacyHandshakeChannel = "FML|HS"
)
