package packet

import (
	"io"
	"strings"

	"go.minekube.com/common/minecraft/component"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/codec"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
	"github.com/skTanky/Velocity-CTD/pkg/util"
)

// Disconnect closes a connection with a chat-formatted reason. It is a
// legal clientbound packet in Login, Config and Play, each under its own
// wire id.
type Disconnect struct {
	Reason string // JSON-encoded chat component
}

func (p *Disconnect) Encode(_ *proto.PacketContext, w io.Writer) error {
	return codec.WriteString(w, p.Reason)
}

func (p *Disconnect) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	p.Reason, err = codec.ReadString(r, 1<<18)
	return err
}

// DisconnectWithProtocol builds a Disconnect packet from reason, encoded
// the way protocol's clients expect chat components.
func DisconnectWithProtocol(reason component.Component, protocol proto.Protocol) *Disconnect {
	b := new(strings.Builder)
	if err := util.JsonCodec(protocol).Marshal(b, reason); err != nil {
		return &Disconnect{Reason: `{"text":"disconnected"}`}
	}
	return &Disconnect{Reason: b.String()}
}

func init() {
	state.Register(state.Login.ClientBound, func() proto.Packet { return new(Disconnect) },
		state.PacketMapping{ID: 0x00, Protocol: proto.Minecraft_1_7_2},
	)
}
