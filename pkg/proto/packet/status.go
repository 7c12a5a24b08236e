package packet

import (
	"io"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/codec"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
)

// StatusRequest asks for the server list ping JSON; it has no fields.
type StatusRequest struct{}

func (*StatusRequest) Encode(*proto.PacketContext, io.Writer) error { return nil }
func (*StatusRequest) Decode(*proto.PacketContext, io.Reader) error { return nil }

// StatusResponse carries the server list ping JSON payload verbatim;
// the proxy may synthesize it or pass a backend's response through.
type StatusResponse struct {
	Status string // raw JSON
}

func (p *StatusResponse) Encode(_ *proto.PacketContext, w io.Writer) error {
	return codec.WriteString(w, p.Status)
}

func (p *StatusResponse) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	p.Status, err = codec.ReadString(r, 1<<18)
	return err
}

// Ping is the status/play keep-alive probe. In Status state it is
// answered with the identical payload echoed back.
type Ping struct {
	Payload int64
}

func (p *Ping) Encode(_ *proto.PacketContext, w io.Writer) error {
	return codec.WriteInt64(w, p.Payload)
}

func (p *Ping) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	p.Payload, err = codec.ReadInt64(r)
	return err
}

func init() {
	state.Register(state.Status.ServerBound, func() proto.Packet { return new(StatusRequest) },
		state.PacketMapping{ID: 0x00, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(state.Status.ServerBound, func() proto.Packet { return new(Ping) },
		state.PacketMapping{ID: 0x01, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(state.Status.ClientBound, func() proto.Packet { return new(StatusResponse) },
		state.PacketMapping{ID: 0x00, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(state.Status.ClientBound, func() proto.Packet { return new(Ping) },
		state.PacketMapping{ID: 0x01, Protocol: proto.Minecraft_1_7_2},
	)
}
