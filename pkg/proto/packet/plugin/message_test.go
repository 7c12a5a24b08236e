package plugin

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
)

func TestRegisterRecognizesLegacyAndModernSpellings(t *testing.T) {
	assert.True(t, Register(&Message{Channel: "REGISTER"}))
	assert.True(t, Register(&Message{Channel: "minecraft:register"}))
	assert.False(t, Register(&Message{Channel: "something:else"}))
}

func TestUnregisterRecognizesLegacyAndModernSpellings(t *testing.T) {
	assert.True(t, Unregister(&Message{Channel: "UNREGISTER"}))
	assert.True(t, Unregister(&Message{Channel: "minecraft:unregister"}))
	assert.False(t, Unregister(&Message{Channel: "something:else"}))
}

func TestMcBrandRecognizesLegacyAndModernSpellings(t *testing.T) {
	assert.True(t, McBrand(&Message{Channel: "MC|Brand"}))
	assert.True(t, McBrand(&Message{Channel: "minecraft:brand"}))
	assert.False(t, McBrand(&Message{Channel: "minecraft:register"}))
}

func TestChannelsSplitsNullSeparatedPayload(t *testing.T) {
	m := &Message{Data: []byte("foo:bar\x00baz:qux")}
	assert.Equal(t, []string{"foo:bar", "baz:qux"}, Channels(m))
}

func TestChannelsTrimsTrailingNulAndHandlesEmpty(t *testing.T) {
	m := &Message{Data: []byte("foo:bar\x00\x00")}
	assert.Equal(t, []string{"foo:bar"}, Channels(m))

	assert.Nil(t, Channels(&Message{Data: nil}))
	assert.Nil(t, Channels(&Message{Data: []byte("\x00\x00")}))
}

func TestConstructChannelsPacketUsesLegacyNameBelow1_13(t *testing.T) {
	m := ConstructChannelsPacket(proto.Minecraft_1_12_2, "foo:bar", "baz:qux")
	assert.Equal(t, "REGISTER", m.Channel)
	assert.Equal(t, []string{"foo:bar", "baz:qux"}, Channels(m))
}

func TestConstructChannelsPacketUsesModernNameAt1_13AndAbove(t *testing.T) {
	m := ConstructChannelsPacket(proto.Minecraft_1_13, "foo:bar")
	assert.Equal(t, "minecraft:register", m.Channel)
}

func TestRewriteMinecraftBrandPicksNameByProtocolAndKeepsPayload(t *testing.T) {
	src := &Message{Channel: "minecraft:brand", Data: []byte("vanilla")}

	legacy := RewriteMinecraftBrand(src, proto.Minecraft_1_8)
	assert.Equal(t, "MC|Brand", legacy.Channel)
	assert.Equal(t, []byte("vanilla"), legacy.Data)

	modern := RewriteMinecraftBrand(src, proto.Minecraft_1_13)
	assert.Equal(t, "minecraft:brand", modern.Channel)
	assert.Equal(t, []byte("vanilla"), modern.Data)
}

func TestLegacyRegisterUnregisterAreCaseSensitiveExactMatches(t *testing.T) {
	assert.True(t, LegacyRegister(&Message{Channel: "REGISTER"}))
	assert.False(t, LegacyRegister(&Message{Channel: "minecraft:register"}))
	assert.True(t, LegacyUnregister(&Message{Channel: "UNREGISTER"}))
	assert.False(t, LegacyUnregister(&Message{Channel: "minecraft:unregister"}))
}

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	orig := &Message{Channel: "minecraft:brand", Data: []byte("my-proxy")}

	buf := new(bytes.Buffer)
	require.NoError(t, orig.Encode(nil, buf))

	var decoded Message
	require.NoError(t, decoded.Decode(nil, buf))
	assert.Equal(t, orig.Channel, decoded.Channel)
	assert.Equal(t, orig.Data, decoded.Data)
}
