package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skTanky/Velocity-CTD/pkg/util/uuid"
)

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "hello world", "unicode: 你好"} {
		buf := new(bytes.Buffer)
		require.NoError(t, WriteString(buf, s))
		got, err := ReadString(buf, DefaultMaxStringLength)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestReadStringRejectsOverLength(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteString(buf, "this string is definitely too long for the cap"))
	_, err := ReadString(buf, 4)
	assert.ErrorIs(t, err, ErrStringTooLong)
}

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		buf := new(bytes.Buffer)
		require.NoError(t, WriteBool(buf, v))
		got, err := ReadBool(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	u := uuid.New()
	buf := new(bytes.Buffer)
	require.NoError(t, WriteUUID(buf, u))
	got, err := ReadUUID(buf)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestByteArrayRoundTrip(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	buf := new(bytes.Buffer)
	require.NoError(t, WriteByteArray(buf, data))
	got, err := ReadByteArray(buf)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestInt16RoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteInt16(buf, -1))
	got, err := ReadInt16(buf)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), got)
}

func TestInt64RoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, WriteInt64(buf, 1234567890123))
	got, err := ReadInt64(buf)
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890123), got)
}
