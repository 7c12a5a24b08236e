package codec

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherRoundTrip(t *testing.T) {
	secret := make([]byte, 16)
	_, err := rand.Read(secret)
	require.NoError(t, err)

	plaintext := []byte("the quick brown fox jumps over the lazy dog, 0123456789")

	var encrypted bytes.Buffer
	ew, err := NewEncryptWriter(&encrypted, secret)
	require.NoError(t, err)
	n, err := ew.Write(plaintext)
	require.NoError(t, err)
	assert.Equal(t, len(plaintext), n)

	assert.NotEqual(t, plaintext, encrypted.Bytes(), "ciphertext should not equal the plaintext")

	dr, err := NewDecryptReader(bytes.NewReader(encrypted.Bytes()), secret)
	require.NoError(t, err)
	got, err := io.ReadAll(dr)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestCipherRoundTripAcrossMultipleWrites(t *testing.T) {
	secret := bytes.Repeat([]byte{0x42}, 16)

	var encrypted bytes.Buffer
	ew, err := NewEncryptWriter(&encrypted, secret)
	require.NoError(t, err)

	chunks := [][]byte{[]byte("first"), []byte("second"), []byte("third-chunk-longer")}
	var plaintext []byte
	for _, c := range chunks {
		_, err := ew.Write(c)
		require.NoError(t, err)
		plaintext = append(plaintext, c...)
	}

	dr, err := NewDecryptReader(bytes.NewReader(encrypted.Bytes()), secret)
	require.NoError(t, err)
	got, err := io.ReadAll(dr)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestNewEncryptWriterRejectsBadKeyLength(t *testing.T) {
	_, err := NewEncryptWriter(new(bytes.Buffer), []byte("too-short"))
	assert.Error(t, err)
}
