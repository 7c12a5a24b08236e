package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/state"
)

// testPacket is a minimal proto.Packet used only by this test file, so the
// codec round trip can be exercised without importing the packet package
// (which imports codec, and would create a cycle).
type testPacket struct {
	Value string
}

func (p *testPacket) Encode(_ *proto.PacketContext, w io.Writer) error {
	return WriteString(w, p.Value)
}

func (p *testPacket) Decode(_ *proto.PacketContext, r io.Reader) error {
	v, err := ReadString(r, DefaultMaxStringLength)
	p.Value = v
	return err
}

func noFields() []zap.Field { return nil }

func TestEncoderDecoderRoundTrip(t *testing.T) {
	reg := state.Handshake
	state.Register(reg.ServerBound, func() proto.Packet { return new(testPacket) },
		state.PacketMapping{ID: 0x7E, Protocol: proto.Minecraft_1_7_2})

	buf := new(bytes.Buffer)
	enc := NewEncoder(buf, proto.ServerBound)
	enc.SetProtocol(proto.Minecraft_1_7_2)
	enc.SetState(reg)

	sent := &testPacket{Value: "hello"}
	_, err := enc.WritePacket(sent)
	require.NoError(t, err)

	dec := NewDecoder(buf, proto.ServerBound, noFields)
	dec.SetProtocol(proto.Minecraft_1_7_2)
	dec.SetState(reg)

	ctx, err := dec.ReadPacket()
	require.NoError(t, err)
	require.True(t, ctx.KnownPacket)
	got, ok := ctx.Packet.(*testPacket)
	require.True(t, ok)
	assert.Equal(t, sent.Value, got.Value)
}

func TestDecoderRejectsFrameTooLarge(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteVarInt(buf, MaxPacketSize+1))

	dec := NewDecoder(buf, proto.ServerBound, noFields)
	_, err := dec.ReadPacket()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestEncoderDecoderRoundTripWithCompression(t *testing.T) {
	reg := state.Play
	state.Register(reg.ClientBound, func() proto.Packet { return new(testPacket) },
		state.PacketMapping{ID: 0x01, Protocol: proto.Minecraft_1_7_2})

	buf := new(bytes.Buffer)
	enc := NewEncoder(buf, proto.ClientBound)
	enc.SetProtocol(proto.Minecraft_1_7_2)
	enc.SetState(reg)
	require.NoError(t, enc.SetCompression(8, -1))

	big := bytes.Repeat([]byte("z"), 128)
	sent := &testPacket{Value: string(big)}
	_, err := enc.WritePacket(sent)
	require.NoError(t, err)

	dec := NewDecoder(buf, proto.ClientBound, noFields)
	dec.SetProtocol(proto.Minecraft_1_7_2)
	dec.SetState(reg)
	dec.SetCompressionThreshold(8)

	ctx, err := dec.ReadPacket()
	require.NoError(t, err)
	got, ok := ctx.Packet.(*testPacket)
	require.True(t, ok)
	assert.Equal(t, sent.Value, got.Value)
}
