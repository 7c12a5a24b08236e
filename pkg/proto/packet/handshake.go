// Package packet defines the tagged-variant packet types this proxy
// must interpret, and registers each one's wire id range with the
// matching state registry.
package packet

import (
	"io"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/codec"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
)

// NextState is the value of Handshake.NextState, telling the proxy which
// state the client wants to enter next.
type NextState int

const (
	NextStatus   NextState = 1
	NextLogin    NextState = 2
	NextTransfer NextState = 3 // 1.20.5+, equivalent to NextLogin with a transfer flag
)

// Handshake is the single packet legal in the Handshake state. It
// carries the client's claimed protocol version, the hostname it
// dialed (the "virtual host"), the port, and the state it wants next.
type Handshake struct {
	ProtocolVersion proto.Protocol
	ServerAddress   string
	Port            uint16
	NextState       NextState
}

func (h *Handshake) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteVarInt(w, int(h.ProtocolVersion)); err != nil {
		return err
	}
	if err := codec.WriteString(w, h.ServerAddress); err != nil {
		return err
	}
	if err := codec.WriteInt16(w, int16(h.Port)); err != nil {
		return err
	}
	return codec.WriteVarInt(w, int(h.NextState))
}

func (h *Handshake) Decode(_ *proto.PacketContext, r io.Reader) error {
	v, err := codec.ReadVarInt(r)
	if err != nil {
		return err
	}
	h.ProtocolVersion = proto.Protocol(v)
	if h.ServerAddress, err = codec.ReadString(r, 255); err != nil {
		return err
	}
	port, err := codec.ReadInt16(r)
	if err != nil {
		return err
	}
	h.Port = uint16(port)
	next, err := codec.ReadVarInt(r)
	if err != nil {
		return err
	}
	h.NextState = NextState(next)
	return nil
}

func init() {
	state.Register(state.Handshake.ServerBound, func() proto.Packet { return new(Handshake) },
		state.PacketMapping{ID: 0x00, Protocol: proto.Minecraft_1_7_2},
	)
}
