package proxy

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/util/gameprofile"
	"github.com/skTanky/Velocity-CTD/pkg/util/uuid"
)

func testProfile() *gameprofile.GameProfile {
	return &gameprofile.GameProfile{
		Id:   uuid.OfflinePlayer("Steve"),
		Name: "Steve",
		Properties: []gameprofile.Property{
			{Name: "textures", Value: "base64-texture-blob", Signature: "base64-signature"},
		},
	}
}

func TestCreateAndVerifyModernForwardingData(t *testing.T) {
	secret := []byte("shared-secret")
	addr := &net.TCPAddr{IP: net.ParseIP("203.0.113.5"), Port: 54321}

	payload, err := createModernForwardingData(secret, addr, testProfile(), proto.Minecraft_1_20_2)
	require.NoError(t, err)

	ok, body := verifyModernForwardingData(secret, payload)
	require.True(t, ok)
	assert.NotEmpty(t, body)
}

func TestVerifyModernForwardingDataRejectsWrongSecret(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("203.0.113.5"), Port: 54321}
	payload, err := createModernForwardingData([]byte("correct-secret"), addr, testProfile(), proto.Minecraft_1_20_2)
	require.NoError(t, err)

	ok, _ := verifyModernForwardingData([]byte("wrong-secret"), payload)
	assert.False(t, ok)
}

func TestVerifyModernForwardingDataRejectsTamperedBody(t *testing.T) {
	secret := []byte("shared-secret")
	addr := &net.TCPAddr{IP: net.ParseIP("203.0.113.5"), Port: 54321}
	payload, err := createModernForwardingData(secret, addr, testProfile(), proto.Minecraft_1_20_2)
	require.NoError(t, err)

	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-1] ^= 0xFF

	ok, _ := verifyModernForwardingData(secret, tampered)
	assert.False(t, ok)
}

func TestVerifyModernForwardingDataRejectsShortPayload(t *testing.T) {
	ok, body := verifyModernForwardingData([]byte("secret"), []byte{1, 2, 3})
	assert.False(t, ok)
	assert.Nil(t, body)
}

func TestRewriteLegacyHandshakeEmbedsIdentity(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("198.51.100.7"), Port: 12345}
	profile := testProfile()

	got, err := rewriteLegacyHandshake("play.example.com", addr, profile)
	require.NoError(t, err)
	assert.Contains(t, got, "play.example.com\x00198.51.100.7\x00"+uuid.Undashed(profile.Id))
}

func TestRewriteBungeeGuardHandshakeAppendsToken(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("198.51.100.7"), Port: 12345}
	profile := testProfile()

	got, err := rewriteBungeeGuardHandshake("play.example.com", addr, profile, []byte("guard-secret"))
	require.NoError(t, err)
	assert.Contains(t, got, "bungeeguard-token")
	assert.Contains(t, got, "guard-secret")
}
