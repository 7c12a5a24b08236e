// Package plugin implements the PluginMessage ("custom payload") packet
// and the channel-naming conventions (legacy "MC|", Forge, modern
// "minecraft:") the proxy must recognize to intercept register/
// unregister control messages.
package plugin

import (
	"io"
	"strings"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/codec"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
)

// Message is a PluginMessage packet, in both directions. It is registered
// for the Play state only; Config-state plugin messages are not decoded
// as Message.
type Message struct {
	Channel string
	Data    []byte
}

func (p *Message) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteString(w, p.Channel); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

func (p *Message) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	if p.Channel, err = codec.ReadString(r, 256); err != nil {
		return err
	}
	p.Data, err = io.ReadAll(r)
	return err
}

const (
	registerChannelLegacy   = "REGISTER"
	unregisterChannelLegacy = "UNREGISTER"
	registerChannelModern   = "minecraft:register"
	unregisterChannelModern = "minecraft:unregister"
	legacyMcBrand           = "MC|Brand"
	modernMcBrand           = "minecraft:brand"
)

// Register reports whether m is a (legacy or modern) channel
// registration message.
func Register(m *Message) bool {
	return m.Channel == registerChannelLegacy || m.Channel == registerChannelModern
}

// Unregister reports whether m is a (legacy or modern) channel
// unregistration message.
func Unregister(m *Message) bool {
	return m.Channel == unregisterChannelLegacy || m.Channel == unregisterChannelModern
}

// McBrand reports whether m is the client/server brand exchange.
func McBrand(m *Message) bool {
	return m.Channel == legacyMcBrand || m.Channel == modernMcBrand
}

// Channels splits a REGISTER/UNREGISTER message's null-separated payload
// into individual channel identifiers.
func Channels(m *Message) []string {
	raw := strings.TrimRight(string(m.Data), "\x00")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\x00")
}

// ConstructChannelsPacket builds a REGISTER message listing channels,
// using the channel naming convention the given protocol expects.
func ConstructChannelsPacket(protocol proto.Protocol, channels ...string) *Message {
	name := registerChannelModern
	if protocol.Lower(proto.Minecraft_1_13) {
		name = registerChannelLegacy
	}
	return &Message{
		Channel: name,
		Data:    []byte(strings.Join(channels, "\x00")),
	}
}

// RewriteMinecraftBrand rewrites the client/server brand channel name to
// match what protocol's peer expects, leaving the payload untouched.
func RewriteMinecraftBrand(m *Message, protocol proto.Protocol) *Message {
	name := modernMcBrand
	if protocol.Lower(proto.Minecraft_1_13) {
		name = legacyMcBrand
	}
	return &Message{Channel: name, Data: m.Data}
}

// LegacyRegister/LegacyUnregister match Forge's 1.7-1.12 legacy register
// channel spellings exactly (case-sensitive, no "minecraft:" prefix),
// used by canForwardPluginMessage's Forge compatibility check.
func LegacyRegister(m *Message) bool   { return m.Channel == registerChannelLegacy }
func LegacyUnregister(m *Message) bool { return m.Channel == unregisterChannelLegacy }

func init() {
	state.Register(state.Play.ServerBound, func() proto.Packet { return new(Message) },
		state.PacketMapping{ID: 0x17, Protocol: proto.Minecraft_1_7_2},
		state.PacketMapping{ID: 0x09, Protocol: proto.Minecraft_1_9},
	)
	state.Register(state.Play.ClientBound, func() proto.Packet { return new(Message) },
		state.PacketMapping{ID: 0x3F, Protocol: proto.Minecraft_1_7_2},
		state.PacketMapping{ID: 0x18, Protocol: proto.Minecraft_1_9},
	)
}
