package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skTanky/Velocity-CTD/pkg/proto/packet"
)

func TestNewSettingsExposesUnderlyingPacketFields(t *testing.T) {
	s := NewSettings(&packet.ClientSettings{
		Locale:               "fr_FR",
		ViewDistance:         8,
		ChatMode:             1,
		ChatColors:           false,
		ChatFilteringEnabled: true,
		SkinParts:            0x3C,
		MainHand:             0,
	})

	assert.Equal(t, "fr_FR", s.Locale())
	assert.Equal(t, byte(8), s.ViewDistance())
	assert.Equal(t, 1, s.ChatMode())
	assert.False(t, s.ChatColors())
	assert.True(t, s.ChatFilteringEnabled())
	assert.Equal(t, byte(0x3C), s.SkinParts())
	assert.Equal(t, 0, s.MainHand())
}

func TestDefaultSettingsIsVanillaLike(t *testing.T) {
	assert.Equal(t, "en_US", DefaultSettings.Locale())
	assert.Equal(t, byte(10), DefaultSettings.ViewDistance())
	assert.True(t, DefaultSettings.ChatColors())
	assert.Equal(t, 1, DefaultSettings.MainHand())
}
