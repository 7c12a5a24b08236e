package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteVarIntKnownEncodings(t *testing.T) {
	tests := []struct {
		value int
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xAC, 0x02}},
		{2097151, []byte{0xFF, 0xFF, 0x7F}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}
	for _, tt := range tests {
		buf := new(bytes.Buffer)
		require.NoError(t, WriteVarInt(buf, tt.value))
		assert.Equal(t, tt.want, buf.Bytes())
		assert.Equal(t, len(tt.want), VarIntSize(tt.value))
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	values := []int{0, 1, 127, 128, 255, 256, 1000, 32767, 65535, 2097151, -1, -2147483648}
	for _, v := range values {
		buf := new(bytes.Buffer)
		require.NoError(t, WriteVarInt(buf, v))
		got, err := ReadVarInt(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestReadVarIntTooLong(t *testing.T) {
	// Five bytes, all with the continuation bit set: never terminates.
	buf := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	_, err := ReadVarInt(buf)
	assert.ErrorIs(t, err, ErrVarIntTooLong)
}

func TestAppendVarIntMatchesWriteVarInt(t *testing.T) {
	for _, v := range []int{0, 1, 300, 2097151} {
		buf := new(bytes.Buffer)
		require.NoError(t, WriteVarInt(buf, v))
		assert.Equal(t, buf.Bytes(), AppendVarInt(nil, v))
	}
}
