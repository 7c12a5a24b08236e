package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proxy/message"
)

func TestChannelRegistrarRegisterFromIdUnregister(t *testing.T) {
	r := newChannelRegistrar()
	id := message.NewChannelIdentifier("minecraft:brand")

	r.Register(id)
	got, ok := r.FromId("minecraft:brand")
	assert.True(t, ok)
	assert.Equal(t, "minecraft:brand", got.Id())

	r.Unregister(id)
	_, ok = r.FromId("minecraft:brand")
	assert.False(t, ok)
}

func TestChannelsForProtocolReturnsACopy(t *testing.T) {
	r := newChannelRegistrar()
	r.Register(message.NewChannelIdentifier("minecraft:brand"))

	channels := r.ChannelsForProtocol(proto.Minecraft_1_13)
	assert.True(t, channels.Has("minecraft:brand"))

	channels.Insert("extra:channel")
	assert.False(t, r.registered.Has("extra:channel"), "mutating the returned set must not affect the registrar")
}
