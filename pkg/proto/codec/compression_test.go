package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressorRoundTripBelowThreshold(t *testing.T) {
	c := newCompressor(256, -1)
	body := []byte("short body")
	wire, err := c.compress(body)
	require.NoError(t, err)

	got, err := c.decompress(wire)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestCompressorRoundTripAboveThreshold(t *testing.T) {
	c := newCompressor(16, -1)
	body := bytes.Repeat([]byte("x"), 1024)
	wire, err := c.compress(body)
	require.NoError(t, err)
	assert.Less(t, len(wire), len(body), "a long repetitive body should compress smaller than its input")

	got, err := c.decompress(wire)
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestCompressorRejectsLieAboutCompressionState(t *testing.T) {
	c := newCompressor(16, -1)
	// Uncompressed marker (0) followed by a body at/above threshold: a
	// well-behaved peer would have compressed this.
	buf := new(bytes.Buffer)
	require.NoError(t, WriteVarInt(buf, 0))
	buf.Write(bytes.Repeat([]byte{0x01}, 32))

	_, err := c.decompress(buf.Bytes())
	assert.ErrorIs(t, err, ErrBadlyCompressed)
}

func TestCompressorRejectsDeclaredLengthBelowThreshold(t *testing.T) {
	c := newCompressor(256, -1)
	inner := newCompressor(256, -1)
	wire, err := inner.compress(bytes.Repeat([]byte("y"), 300))
	require.NoError(t, err)

	// Tamper with the declared uncompressed length so it reads below
	// threshold even though the frame is actually zlib-compressed.
	buf := new(bytes.Buffer)
	require.NoError(t, WriteVarInt(buf, 10))
	buf.Write(wire[VarIntSize(300):])

	_, err = c.decompress(buf.Bytes())
	assert.ErrorIs(t, err, ErrBadlyCompressed)
}
