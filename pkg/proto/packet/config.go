package packet

import (
	"io"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
)

// FinishConfiguration (1.20.2+) is sent by the backend to signal the end
// of the Config phase; the client echoes it back, and both sides
// transition to Play on receipt.
type FinishConfiguration struct{}

func (*FinishConfiguration) Encode(*proto.PacketContext, io.Writer) error { return nil }
func (*FinishConfiguration) Decode(*proto.PacketContext, io.Reader) error { return nil }

func init() {
	state.Register(state.Config.ServerBound, func() proto.Packet { return new(FinishConfiguration) },
		state.PacketMapping{ID: 0x02, Protocol: proto.Minecraft_1_20_2},
	)
	state.Register(state.Config.ClientBound, func() proto.Packet { return new(FinishConfiguration) },
		state.PacketMapping{ID: 0x02, Protocol: proto.Minecraft_1_20_2},
	)
	state.Register(state.Config.ClientBound, func() proto.Packet { return new(Disconnect) },
		state.PacketMapping{ID: 0x01, Protocol: proto.Minecraft_1_20_2},
	)
	state.Register(state.Config.ServerBound, func() proto.Packet { return new(ClientSettings) },
		state.PacketMapping{ID: 0x00, Protocol: proto.Minecraft_1_20_2},
	)
}
