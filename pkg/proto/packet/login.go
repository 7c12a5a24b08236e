package packet

import (
	"io"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/codec"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
	"github.com/skTanky/Velocity-CTD/pkg/util/gameprofile"
	"github.com/skTanky/Velocity-CTD/pkg/util/uuid"
)

// MaxLoginNameLength bounds LoginStart.Name, matching vanilla's limit.
const MaxLoginNameLength = 16

// LoginStart begins authentication.
type LoginStart struct {
	Name string
	// HasUUID/UUID are only present on 1.19+ clients, which pre-declare
	// their offline-derived UUID even in online mode.
	HasUUID bool
	UUID    uuid.UUID
}

func (p *LoginStart) Encode(c *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteString(w, p.Name); err != nil {
		return err
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_19) {
		if err := codec.WriteBool(w, p.HasUUID); err != nil {
			return err
		}
		if p.HasUUID {
			return codec.WriteUUID(w, p.UUID)
		}
	}
	return nil
}

func (p *LoginStart) Decode(c *proto.PacketContext, r io.Reader) (err error) {
	if p.Name, err = codec.ReadString(r, MaxLoginNameLength); err != nil {
		return err
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_19) {
		if p.HasUUID, err = codec.ReadBool(r); err != nil {
			return err
		}
		if p.HasUUID {
			p.UUID, err = codec.ReadUUID(r)
		}
	}
	return err
}

// EncryptionRequest asks the client to generate and RSA-encrypt a shared
// secret, sent only in online mode.
type EncryptionRequest struct {
	ServerID    string // always empty in modern Minecraft
	PublicKey   []byte // DER-encoded RSA public key
	VerifyToken []byte
}

func (p *EncryptionRequest) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteString(w, p.ServerID); err != nil {
		return err
	}
	if err := codec.WriteByteArray(w, p.PublicKey); err != nil {
		return err
	}
	return codec.WriteByteArray(w, p.VerifyToken)
}

func (p *EncryptionRequest) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	if p.ServerID, err = codec.ReadString(r, 20); err != nil {
		return err
	}
	if p.PublicKey, err = codec.ReadByteArray(r); err != nil {
		return err
	}
	p.VerifyToken, err = codec.ReadByteArray(r)
	return err
}

// EncryptionResponse carries the client's RSA-encrypted shared secret
// and the echoed verify token.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (p *EncryptionResponse) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteByteArray(w, p.SharedSecret); err != nil {
		return err
	}
	return codec.WriteByteArray(w, p.VerifyToken)
}

func (p *EncryptionResponse) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	if p.SharedSecret, err = codec.ReadByteArray(r); err != nil {
		return err
	}
	p.VerifyToken, err = codec.ReadByteArray(r)
	return err
}

// SetCompression tells the peer the threshold to start compressing
// packets above; the pipeline installs the filter right after this
// packet is written.
type SetCompression struct {
	Threshold int
}

func (p *SetCompression) Encode(_ *proto.PacketContext, w io.Writer) error {
	return codec.WriteVarInt(w, p.Threshold)
}

func (p *SetCompression) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	p.Threshold, err = codec.ReadVarInt(r)
	return err
}

// LoginSuccess completes authentication with the player's resolved
// profile.
type LoginSuccess struct {
	UUID       uuid.UUID
	Name       string
	Properties []gameprofile.Property
}

func (p *LoginSuccess) Encode(c *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteUUID(w, p.UUID); err != nil {
		return err
	}
	if err := codec.WriteString(w, p.Name); err != nil {
		return err
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_19) {
		if err := codec.WriteVarInt(w, len(p.Properties)); err != nil {
			return err
		}
		for _, prop := range p.Properties {
			if err := codec.WriteString(w, prop.Name); err != nil {
				return err
			}
			if err := codec.WriteString(w, prop.Value); err != nil {
				return err
			}
			hasSig := prop.Signature != ""
			if err := codec.WriteBool(w, hasSig); err != nil {
				return err
			}
			if hasSig {
				if err := codec.WriteString(w, prop.Signature); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (p *LoginSuccess) Decode(c *proto.PacketContext, r io.Reader) (err error) {
	if p.UUID, err = codec.ReadUUID(r); err != nil {
		return err
	}
	if p.Name, err = codec.ReadString(r, MaxLoginNameLength); err != nil {
		return err
	}
	if c.Protocol.GreaterEqual(proto.Minecraft_1_19) {
		n, err := codec.ReadVarInt(r)
		if err != nil {
			return err
		}
		p.Properties = make([]gameprofile.Property, n)
		for i := range p.Properties {
			if p.Properties[i].Name, err = codec.ReadString(r, 1<<16); err != nil {
				return err
			}
			if p.Properties[i].Value, err = codec.ReadString(r, 1<<16); err != nil {
				return err
			}
			hasSig, err := codec.ReadBool(r)
			if err != nil {
				return err
			}
			if hasSig {
				if p.Properties[i].Signature, err = codec.ReadString(r, 1<<16); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// LoginAcknowledged (serverbound, 1.20.2+) tells the proxy the client
// received LoginSuccess and is ready to move to the Config state.
type LoginAcknowledged struct{}

func (*LoginAcknowledged) Encode(*proto.PacketContext, io.Writer) error { return nil }
func (*LoginAcknowledged) Decode(*proto.PacketContext, io.Reader) error { return nil }

// LoginPluginMessage is a clientbound request during Login asking the
// other side to respond to a custom login plugin channel - the
// mechanism MODERN (Velocity) forwarding and Forge's handshake use.
type LoginPluginMessage struct {
	MessageID int
	Channel   string
	Data      []byte
}

func (p *LoginPluginMessage) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteVarInt(w, p.MessageID); err != nil {
		return err
	}
	if err := codec.WriteString(w, p.Channel); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

func (p *LoginPluginMessage) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	if p.MessageID, err = codec.ReadVarInt(r); err != nil {
		return err
	}
	if p.Channel, err = codec.ReadString(r, 1<<16); err != nil {
		return err
	}
	p.Data, err = io.ReadAll(r)
	return err
}

// LoginPluginResponse answers a LoginPluginMessage.
type LoginPluginResponse struct {
	MessageID int
	Success   bool
	Data      []byte
}

func (p *LoginPluginResponse) Encode(_ *proto.PacketContext, w io.Writer) error {
	if err := codec.WriteVarInt(w, p.MessageID); err != nil {
		return err
	}
	if err := codec.WriteBool(w, p.Success); err != nil {
		return err
	}
	_, err := w.Write(p.Data)
	return err
}

func (p *LoginPluginResponse) Decode(_ *proto.PacketContext, r io.Reader) (err error) {
	if p.MessageID, err = codec.ReadVarInt(r); err != nil {
		return err
	}
	if p.Success, err = codec.ReadBool(r); err != nil {
		return err
	}
	p.Data, err = io.ReadAll(r)
	return err
}

func init() {
	sb := state.Login.ServerBound
	cb := state.Login.ClientBound
	state.Register(sb, func() proto.Packet { return new(LoginStart) },
		state.PacketMapping{ID: 0x00, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(sb, func() proto.Packet { return new(EncryptionResponse) },
		state.PacketMapping{ID: 0x01, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(sb, func() proto.Packet { return new(LoginPluginResponse) },
		state.PacketMapping{ID: 0x02, Protocol: proto.Minecraft_1_13},
	)
	state.Register(sb, func() proto.Packet { return new(LoginAcknowledged) },
		state.PacketMapping{ID: 0x03, Protocol: proto.Minecraft_1_20_2},
	)

	state.Register(cb, func() proto.Packet { return new(EncryptionRequest) },
		state.PacketMapping{ID: 0x01, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(cb, func() proto.Packet { return new(LoginSuccess) },
		state.PacketMapping{ID: 0x02, Protocol: proto.Minecraft_1_7_2},
	)
	state.Register(cb, func() proto.Packet { return new(SetCompression) },
		state.PacketMapping{ID: 0x03, Protocol: proto.Minecraft_1_8},
	)
	state.Register(cb, func() proto.Packet { return new(LoginPluginMessage) },
		state.PacketMapping{ID: 0x04, Protocol: proto.Minecraft_1_13},
	)
}
