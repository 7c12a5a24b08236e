package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
)

func ctx(direction proto.Direction, protocol proto.Protocol) *proto.PacketContext {
	return &proto.PacketContext{Direction: direction, Protocol: protocol}
}

func TestKeepAliveUsesVarIntBelow1_12_2AndInt64AtOrAbove(t *testing.T) {
	old := ctx(proto.ServerBound, proto.Minecraft_1_8)
	buf := new(bytes.Buffer)
	require.NoError(t, (&KeepAlive{RandomId: 42}).Encode(old, buf))
	assert.Less(t, buf.Len(), 8, "pre-1.12.2 keepalive should be varint-encoded, not a fixed 8 bytes")

	var decodedOld KeepAlive
	require.NoError(t, decodedOld.Decode(old, buf))
	assert.Equal(t, int64(42), decodedOld.RandomId)

	modern := ctx(proto.ServerBound, proto.Minecraft_1_12_2)
	buf.Reset()
	require.NoError(t, (&KeepAlive{RandomId: 123456789}).Encode(modern, buf))
	assert.Equal(t, 8, buf.Len())

	var decodedModern KeepAlive
	require.NoError(t, decodedModern.Decode(modern, buf))
	assert.Equal(t, int64(123456789), decodedModern.RandomId)
}

func TestJoinGameEncodeDecodeRoundTripPre1_16(t *testing.T) {
	c := ctx(proto.ClientBound, proto.Minecraft_1_13)
	levelType := "default"
	orig := &JoinGame{
		EntityID:          7,
		Gamemode:          1,
		Dimension:         0,
		PartialHashedSeed: -42,
		Difficulty:        2,
		MaxPlayers:        20,
		LevelType:         &levelType,
		ViewDistance:      10,
		ReducedDebugInfo:  true,
	}

	buf := new(bytes.Buffer)
	require.NoError(t, orig.Encode(c, buf))

	var decoded JoinGame
	require.NoError(t, decoded.Decode(c, buf))
	assert.Equal(t, orig.EntityID, decoded.EntityID)
	assert.Equal(t, orig.Gamemode, decoded.Gamemode)
	assert.Equal(t, orig.Dimension, decoded.Dimension)
	assert.Equal(t, orig.Difficulty, decoded.Difficulty)
	assert.Equal(t, orig.MaxPlayers, decoded.MaxPlayers)
	assert.Equal(t, orig.ViewDistance, decoded.ViewDistance)
	assert.Equal(t, orig.PartialHashedSeed, decoded.PartialHashedSeed)
	assert.Equal(t, orig.ReducedDebugInfo, decoded.ReducedDebugInfo)
}

func TestJoinGameEncodeDecodeRoundTripAt1_16UsesDimensionIdentifier(t *testing.T) {
	c := ctx(proto.ClientBound, proto.Minecraft_1_16)
	orig := &JoinGame{
		EntityID:          3,
		Gamemode:          0,
		PreviousGamemode:  1,
		DimensionInfo:     DimensionInfo{Identifier: "minecraft:the_end"},
		PartialHashedSeed: 99,
		MaxPlayers:        10,
		ViewDistance:      8,
	}

	buf := new(bytes.Buffer)
	require.NoError(t, orig.Encode(c, buf))

	var decoded JoinGame
	require.NoError(t, decoded.Decode(c, buf))
	assert.Equal(t, "minecraft:the_end", decoded.DimensionInfo.Identifier)
	assert.Equal(t, orig.PreviousGamemode, decoded.PreviousGamemode)
	assert.Equal(t, orig.MaxPlayers, decoded.MaxPlayers)
}

func TestRespawnEncodeDecodeRoundTrip(t *testing.T) {
	c := ctx(proto.ClientBound, proto.Minecraft_1_16)
	orig := &Respawn{
		DimensionInfo:        DimensionInfo{Identifier: "minecraft:overworld"},
		Gamemode:             1,
		PreviousGamemode:     0,
		LevelType:            "default",
		ShouldKeepPlayerData: true,
	}

	buf := new(bytes.Buffer)
	require.NoError(t, orig.Encode(c, buf))

	var decoded Respawn
	require.NoError(t, decoded.Decode(c, buf))
	assert.Equal(t, orig.DimensionInfo.Identifier, decoded.DimensionInfo.Identifier)
	assert.Equal(t, orig.Gamemode, decoded.Gamemode)
	assert.Equal(t, orig.LevelType, decoded.LevelType)
	assert.True(t, decoded.ShouldKeepPlayerData)
}

func TestChatOnlyEncodesTypeClientBoundAt1_8OrAbove(t *testing.T) {
	server := ctx(proto.ServerBound, proto.Minecraft_1_12_2)
	buf := new(bytes.Buffer)
	require.NoError(t, (&Chat{Message: "hi", Type: ChatMessage}).Encode(server, buf))

	expected := new(bytes.Buffer)
	require.NoError(t, writeStringOnly(expected, "hi"))
	assert.Equal(t, expected.Bytes(), buf.Bytes())

	client := ctx(proto.ClientBound, proto.Minecraft_1_12_2)
	buf.Reset()
	require.NoError(t, (&Chat{Message: "hi", Type: SystemMessage}).Encode(client, buf))

	var decoded Chat
	require.NoError(t, decoded.Decode(client, buf))
	assert.Equal(t, "hi", decoded.Message)
	assert.Equal(t, SystemMessage, decoded.Type)
}

func writeStringOnly(w *bytes.Buffer, s string) error {
	c := ctx(proto.ServerBound, proto.Minecraft_1_7_2)
	chat := &Chat{Message: s}
	return chat.Encode(c, w)
}

func TestClientSettingsEncodeDecodeRoundTrip(t *testing.T) {
	c := ctx(proto.ServerBound, proto.Minecraft_1_12_2)
	orig := &ClientSettings{
		Locale:       "en_US",
		ViewDistance: 12,
		ChatMode:     1,
		ChatColors:   true,
		SkinParts:    0x7F,
		MainHand:     1,
	}

	buf := new(bytes.Buffer)
	require.NoError(t, orig.Encode(c, buf))

	var decoded ClientSettings
	require.NoError(t, decoded.Decode(c, buf))
	assert.Equal(t, *orig, decoded)
}

func TestTitleSetTimesRoundTrip(t *testing.T) {
	c := ctx(proto.ClientBound, proto.Minecraft_1_8)
	orig := &Title{Action: SetTimes, FadeIn: 10, Stay: 70, FadeOut: 20}

	buf := new(bytes.Buffer)
	require.NoError(t, orig.Encode(c, buf))

	var decoded Title
	require.NoError(t, decoded.Decode(c, buf))
	assert.Equal(t, orig.Action, decoded.Action)
	assert.Equal(t, orig.FadeIn, decoded.FadeIn)
	assert.Equal(t, orig.Stay, decoded.Stay)
	assert.Equal(t, orig.FadeOut, decoded.FadeOut)
}

func TestTitleSetTitleRoundTrip(t *testing.T) {
	c := ctx(proto.ClientBound, proto.Minecraft_1_8)
	component := `{"text":"hello"}`
	orig := &Title{Action: SetTitle, Component: &component}

	buf := new(bytes.Buffer)
	require.NoError(t, orig.Encode(c, buf))

	var decoded Title
	require.NoError(t, decoded.Decode(c, buf))
	assert.Equal(t, SetTitle, decoded.Action)
	require.NotNil(t, decoded.Component)
	assert.Equal(t, component, *decoded.Component)
}

func TestNewResetTitleProducesResetAction(t *testing.T) {
	title := NewResetTitle(proto.Minecraft_1_8)
	assert.Equal(t, Reset, title.Action)
}
