package uuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflinePlayerIsDeterministic(t *testing.T) {
	a := OfflinePlayer("Notch")
	b := OfflinePlayer("Notch")
	assert.Equal(t, a, b)
}

func TestOfflinePlayerMatchesMD5NameUUIDConstruction(t *testing.T) {
	// Cross-check against the MD5-name-UUID construction directly, rather
	// than trusting a second copy of the same derivation.
	got := OfflinePlayer("Notch")
	assert.Equal(t, "b50ad385-829d-3141-a216-7e7d7539ba7f", got.String())
}

func TestOfflinePlayerSetsVersionAndVariant(t *testing.T) {
	u := OfflinePlayer("anyname")
	assert.Equal(t, byte(3), u[6]>>4, "version nibble must be 3")
	assert.Equal(t, byte(0x80), u[8]&0xC0, "variant bits must be RFC 4122")
}

func TestOfflinePlayerDiffersByName(t *testing.T) {
	assert.NotEqual(t, OfflinePlayer("Alice"), OfflinePlayer("Bob"))
}

func TestUndashedStripsDashes(t *testing.T) {
	u, err := Parse("b50ad385-829d-3141-a216-7e7d7539ba7f")
	require.NoError(t, err)
	assert.Equal(t, "b50ad385829d3141a2167e7d7539ba7f", Undashed(u))
}

func TestParseAcceptsUndashedForm(t *testing.T) {
	dashed, err := Parse("b50ad385-829d-3141-a216-7e7d7539ba7f")
	require.NoError(t, err)
	undashed, err := Parse("b50ad385829d3141a2167e7d7539ba7f")
	require.NoError(t, err)
	assert.Equal(t, dashed, undashed)
}
