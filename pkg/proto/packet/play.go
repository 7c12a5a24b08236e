package packet

import (
	"io"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/codec"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
	"github.com/skTanky/Velocity-CTD/pkg/util/uuid"
)

// KeepAlive is the bidirectional liveness probe. The proxy intercepts it
// to measure ping and, where ids must differ per backend, to rewrite the
// id in flight.
type KeepAlive struct {
	RandomId int64
}

func (p *KeepAlive) Encode(c *proto.PacketContext, w io.Writer) error {
	if c.Protocol.GreaterEqual(proto.Minecraft_1_12_2) {
		return codec.WriteInt64(w, p.RandomId)
	}
	return codec.WriteVarInt(w, int(p.RandomId))
}

func (p *KeepAlive) Decode(c *proto.PacketContext, r io.Reader) (err error) {
	if c.Protocol.GreaterEqual(proto.Minecraft_1_12_2) {
		p.RandomId, err = codec.ReadInt64(r)
		return err
	}
	v, err := codec.ReadVarInt(r)
	p.RandomId = int64(v)
	return err
}

// DimensionInfo describes the dimension a JoinGame/Respawn pair puts the
// client into, enough to drive the server-switch dimension-refresh
// sequence without interpreting world contents.
type DimensionInfo struct {
	Identifier string // e.g. "minecraft:overworld" (1.16+)
	Natural    bool
}

// JoinGame begins Play on one side. Layout varies significantly by
// protocol; this proxy keeps enough of it to drive a server switch and
// forwards the rest verbatim as NBT where present.
type JoinGame struct {
	EntityID             int32
	Gamemode             byte
	PreviousGamemode     byte
	Dimension            int32 // pre-1.16 numeric dimension id
	DimensionInfo        DimensionInfo
	PartialHashedSeed    int64
	Difficulty           byte
	MaxPlayers           byte
	LevelType            *string
	ViewDistance         int
	ReducedDebugInfo     bool
	CurrentDimensionData codec.Tag
}

func (p *JoinGame) Encode(c *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteInt32BE(w, p.EntityID); err != nil {
		return err
	}
	if err := codec.WriteBool(w, false); err != nil { // hardcore flag, unused by the proxy
		return err
	}
	if err := codec.WriteByte(w, p.Gamemode); err != nil {
		return err
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_16) {
		if err := codec.WriteByte(w, p.PreviousGamemode); err != nil {
			return err
		}
		if err := codec.WriteString(w, p.DimensionInfo.Identifier); err != nil {
			return err
		}
		if err := codec.WriteNBT(w, p.CurrentDimensionData); err != nil {
			return err
		}
	} else {
		if err := codec.WriteInt32BE(w, p.Dimension); err != nil {
			return err
		}
		if err := codec.WriteByte(w, p.Difficulty); err != nil {
			return err
		}
	}
	if err := codec.WriteByte(w, p.MaxPlayers); err != nil {
		return err
	}
	if p.LevelType != nil {
		if err := codec.WriteString(w, *p.LevelType); err != nil {
			return err
		}
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_9) {
		if err := codec.WriteVarInt(w, p.ViewDistance); err != nil {
			return err
		}
	}
	if err := codec.WriteInt64(w, p.PartialHashedSeed); err != nil {
		return err
	}
	return codec.WriteBool(w, p.ReducedDebugInfo)
}

func (p *JoinGame) Decode(c *proto.PacketContext, r io.Reader) error {
	var err error
	if p.EntityID, err = codec.ReadInt32BE(r); err != nil {
		return err
	}
	if _, err = codec.ReadBool(r); err != nil { // hardcore
		return err
	}
	if p.Gamemode, err = codec.ReadByte(r); err != nil {
		return err
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_16) {
		if p.PreviousGamemode, err = codec.ReadByte(r); err != nil {
			return err
		}
		if p.DimensionInfo.Identifier, err = codec.ReadString(r, 256); err != nil {
			return err
		}
		tag, err := codec.ReadNBT(r)
		if err != nil {
			return err
		}
		p.CurrentDimensionData = tag
	} else {
		if p.Dimension, err = codec.ReadInt32BE(r); err != nil {
			return err
		}
		if p.Difficulty, err = codec.ReadByte(r); err != nil {
			return err
		}
	}
	if p.MaxPlayers, err = codec.ReadByte(r); err != nil {
		return err
	}
	if c.Protocol.Lower(proto.Minecraft_1_16) {
		levelType, err := codec.ReadString(r, 16)
		if err != nil {
			return err
		}
		p.LevelType = &levelType
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_9) {
		if p.ViewDistance, err = codec.ReadVarInt(r); err != nil {
			return err
		}
	}
	if p.PartialHashedSeed, err = codec.ReadInt64(r); err != nil {
		return err
	}
	p.ReducedDebugInfo, err = codec.ReadBool(r)
	return err
}

// Respawn re-enters the client into a (possibly different) dimension
// without a socket reconnect - the core mechanism behind a transparent
// server switch.
type Respawn struct {
	Dimension            int32
	DimensionInfo        DimensionInfo
	PartialHashedSeed    int64
	Difficulty           byte
	Gamemode             byte
	PreviousGamemode     byte
	LevelType            string
	ShouldKeepPlayerData bool
	CurrentDimensionData codec.Tag
}

func (p *Respawn) Encode(c *proto.PacketContext, w io.Writer) error {
	if c.Protocol.GreaterEqual(proto.Minecraft_1_16) {
		if err := codec.WriteString(w, p.DimensionInfo.Identifier); err != nil {
			return err
		}
	} else {
		if err := codec.WriteInt32BE(w, p.Dimension); err != nil {
			return err
		}
		if err := codec.WriteByte(w, p.Difficulty); err != nil {
			return err
		}
	}
	if err := codec.WriteByte(w, p.Gamemode); err != nil {
		return err
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_16) {
		if err := codec.WriteByte(w, p.PreviousGamemode); err != nil {
			return err
		}
	}
	if err := codec.WriteString(w, p.LevelType); err != nil {
		return err
	}
	return codec.WriteBool(w, p.ShouldKeepPlayerData)
}

func (p *Respawn) Decode(c *proto.PacketContext, r io.Reader) error {
	var err error
	if c.Protocol.GreaterEqual(proto.Minecraft_1_16) {
		if p.DimensionInfo.Identifier, err = codec.ReadString(r, 256); err != nil {
			return err
		}
	} else {
		if p.Dimension, err = codec.ReadInt32BE(r); err != nil {
			return err
		}
		if p.Difficulty, err = codec.ReadByte(r); err != nil {
			return err
		}
	}
	if p.Gamemode, err = codec.ReadByte(r); err != nil {
		return err
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_16) {
		if p.PreviousGamemode, err = codec.ReadByte(r); err != nil {
			return err
		}
	}
	if p.LevelType, err = codec.ReadString(r, 256); err != nil {
		return err
	}
	p.ShouldKeepPlayerData, err = codec.ReadBool(r)
	return err
}

// MessagePosition is where a Chat packet renders on the client.
type MessagePosition byte

const (
	ChatMessage     MessagePosition = 0
	SystemMessage   MessagePosition = 1
	ActionBarMessage MessagePosition = 2
)

// MaxServerBoundMessageLength bounds player-typed chat; the
// ErrTooLongChatMessage check lives in the caller, not here.
const MaxServerBoundMessageLength = 256

// Chat carries a JSON chat component, in either direction.
type Chat struct {
	Message string
	Type    MessagePosition
	// Sender is only meaningful on 1.19+ signed chat, which this proxy
	// does not re-sign; it is carried for completeness, not serialized.
	Sender uuid.UUID
}

func (p *Chat) Encode(c *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteString(w, p.Message); err != nil {
		return err
	}
	if c.Direction == proto.ClientBound && c.Protocol.GreaterEqual(proto.Minecraft_1_8) {
		if err := codec.WriteByte(w, byte(p.Type)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Chat) Decode(c *proto.PacketContext, r io.Reader) (err error) {
	if p.Message, err = codec.ReadString(r, 1<<18); err != nil {
		return err
	}
	if c.Direction == proto.ClientBound && c.Protocol.GreaterEqual(proto.Minecraft_1_8) {
		b, err := codec.ReadByte(r)
		if err != nil {
			return err
		}
		p.Type = MessagePosition(b)
	}
	return nil
}

// ClientSettings is cached by the proxy and replayed to a new backend on
// server switch.
type ClientSettings struct {
	Locale       string
	ViewDistance byte
	ChatMode     int
	ChatColors   bool
	// ChatFilteringEnabled corresponds to an upstream field the vanilla
	// settings constructor never assigns; it is carried through
	// unchanged rather than defaulted.
	ChatFilteringEnabled bool
	SkinParts            byte
	MainHand             int
}

func (p *ClientSettings) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteString(w, p.Locale); err != nil {
		return err
	}
	if err := codec.WriteByte(w, p.ViewDistance); err != nil {
		return err
	}
	if err := codec.WriteVarInt(w, p.ChatMode); err != nil {
		return err
	}
	if err := codec.WriteBool(w, p.ChatColors); err != nil {
		return err
	}
	if err := codec.WriteByte(w, p.SkinParts); err != nil {
		return err
	}
	return codec.WriteVarInt(w, p.MainHand)
}

func (p *ClientSettings) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	if p.Locale, err = codec.ReadString(r, 16); err != nil {
		return err
	}
	if p.ViewDistance, err = codec.ReadByte(r); err != nil {
		return err
	}
	if p.ChatMode, err = codec.ReadVarInt(r); err != nil {
		return err
	}
	if p.ChatColors, err = codec.ReadBool(r); err != nil {
		return err
	}
	if p.SkinParts, err = codec.ReadByte(r); err != nil {
		return err
	}
	p.MainHand, err = codec.ReadVarInt(r)
	return err
}

// ResourcePackRequest asks the client to download and apply a pack.
type ResourcePackRequest struct {
	Url  string
	Hash string
}

func (p *ResourcePackRequest) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteString(w, p.Url); err != nil {
		return err
	}
	return codec.WriteString(w, p.Hash)
}

func (p *ResourcePackRequest) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	if p.Url, err = codec.ReadString(r, 1<<16); err != nil {
		return err
	}
	p.Hash, err = codec.ReadString(r, 40)
	return err
}

// TitleAction selects which field of Title is meaningful.
type TitleAction int

const (
	SetTitle TitleAction = iota
	SetSubtitle
	SetActionBar
	SetTimes
	Hide
	Reset
)

// Title covers the title/subtitle/action-bar family of packets, unified
// into one action-tagged struct the way the proxy's title-reset helper
// needs it to clear any title left over from the previous server on a
// switch.
type Title struct {
	Action    TitleAction
	Component *string // JSON, when Action needs one
	FadeIn    int32
	Stay      int32
	FadeOut   int32
}

func (p *Title) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteVarInt(w, int(p.Action)); err != nil {
		return err
	}
	switch p.Action {
	case SetTitle, SetSubtitle, SetActionBar:
		s := ""
		if p.Component != nil {
			s = *p.Component
		}
		return codec.WriteString(w, s)
	case SetTimes:
		if err := codec.WriteInt32BE(w, p.FadeIn); err != nil {
			return err
		}
		if err := codec.WriteInt32BE(w, p.Stay); err != nil {
			return err
		}
		return codec.WriteInt32BE(w, p.FadeOut)
	default:
		return nil
	}
}

func (p *Title) Decode(_ *proto.PacketContext, r io.Reader) error {
	action, err := codec.ReadVarInt(r)
	if err != nil {
		return err
	}
	p.Action = TitleAction(action)
	switch p.Action {
	case SetTitle, SetSubtitle, SetActionBar:
		s, err := codec.ReadString(r, 1<<18)
		if err != nil {
			return err
		}
		p.Component = &s
	case SetTimes:
		if p.FadeIn, err = codec.ReadInt32BE(r); err != nil {
			return err
		}
		if p.Stay, err = codec.ReadInt32BE(r); err != nil {
			return err
		}
		p.FadeOut, err = codec.ReadInt32BE(r)
	}
	return err
}

// NewResetTitle returns the version-appropriate "reset title" packet.
func NewResetTitle(_ proto.Protocol) *Title {
	return &Title{Action: Reset}
}

func init() {
	sb := state.Play.ServerBound
	cb := state.Play.ClientBound

	state.Register(sb, func() proto.Packet { return new(KeepAlive) },
		state.PacketMapping{ID: 0x00, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(sb, func() proto.Packet { return new(Chat) },
		state.PacketMapping{ID: 0x01, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(sb, func() proto.Packet { return new(ClientSettings) },
		state.PacketMapping{ID: 0x04, Protocol: proto.Minecraft_1_7_2},
	)

	state.Register(cb, func() proto.Packet { return new(KeepAlive) },
		state.PacketMapping{ID: 0x1F, Protocol: proto.Minecraft_1_7_2},
		state.PacketMapping{ID: 0x20, Protocol: proto.Minecraft_1_9},
		state.PacketMapping{ID: 0x21, Protocol: proto.Minecraft_1_13},
	)
	state.Register(cb, func() proto.Packet { return new(JoinGame) },
		state.PacketMapping{ID: 0x01, Protocol: proto.Minecraft_1_7_2},
		state.PacketMapping{ID: 0x23, Protocol: proto.Minecraft_1_9},
		state.PacketMapping{ID: 0x25, Protocol: proto.Minecraft_1_13},
		state.PacketMapping{ID: 0x28, Protocol: proto.Minecraft_1_16},
	)
	state.Register(cb, func() proto.Packet { return new(Respawn) },
		state.PacketMapping{ID: 0x07, Protocol: proto.Minecraft_1_7_2},
		state.PacketMapping{ID: 0x33, Protocol: proto.Minecraft_1_9},
		state.PacketMapping{ID: 0x3A, Protocol: proto.Minecraft_1_13},
		state.PacketMapping{ID: 0x3D, Protocol: proto.Minecraft_1_16},
	)
	state.Register(cb, func() proto.Packet { return new(Chat) },
		state.PacketMapping{ID: 0x02, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(cb, func() proto.Packet { return new(Disconnect) },
		state.PacketMapping{ID: 0x40, Protocol: proto.Minecraft_1_7_2},
		state.PacketMapping{ID: 0x1A, Protocol: proto.Minecraft_1_9},
	)
	state.Register(cb, func() proto.Packet { return new(ResourcePackRequest) },
		state.PacketMapping{ID: 0x48, Protocol: proto.Minecraft_1_8},
	)
	state.Register(cb, func() proto.Packet { return new(Title) },
		state.PacketMapping{ID: 0x45, Protocol: proto.Minecraft_1_8},
	)
}
