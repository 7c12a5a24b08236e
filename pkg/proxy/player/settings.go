// Package player holds the client-reported settings a connectedPlayer
// exposes and replays across a server switch.
package player

import "github.com/skTanky/Velocity-CTD/pkg/proto/packet"

// Settings is the read-only view of a player's last ClientSettings
// packet.
type Settings interface {
	Locale() string
	ViewDistance() byte
	ChatMode() int
	ChatColors() bool
	// ChatFilteringEnabled is carried through from the client's packet
	// unchanged.
	ChatFilteringEnabled() bool
	SkinParts() byte
	MainHand() int
}

type settings struct {
	p *packet.ClientSettings
}

// NewSettings wraps a decoded ClientSettings packet.
func NewSettings(p *packet.ClientSettings) Settings { return &settings{p: p} }

func (s *settings) Locale() string            { return s.p.Locale }
func (s *settings) ViewDistance() byte         { return s.p.ViewDistance }
func (s *settings) ChatMode() int              { return s.p.ChatMode }
func (s *settings) ChatColors() bool           { return s.p.ChatColors }
func (s *settings) ChatFilteringEnabled() bool { return s.p.ChatFilteringEnabled }
func (s *settings) SkinParts() byte            { return s.p.SkinParts }
func (s *settings) MainHand() int              { return s.p.MainHand }

// ClientSettingsPacket rebuilds the wire packet backing s, for replaying
// a player's settings onto a new backend connection.
func ClientSettingsPacket(s Settings) *packet.ClientSettings {
	return &packet.ClientSettings{
		Locale:               s.Locale(),
		ViewDistance:         s.ViewDistance(),
		ChatMode:             s.ChatMode(),
		ChatColors:           s.ChatColors(),
		ChatFilteringEnabled: s.ChatFilteringEnabled(),
		SkinParts:            s.SkinParts(),
		MainHand:             s.MainHand(),
	}
}

// DefaultSettings is returned for players who haven't sent ClientSettings
// yet.
var DefaultSettings Settings = &settings{p: &packet.ClientSettings{
	Locale:       "en_US",
	ViewDistance: 10,
	ChatMode:     0,
	ChatColors:   true,
	SkinParts:    0,
	MainHand:     1,
}}
