package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// serverIDHash's three worked examples are the ones documented across
// every Minecraft protocol reference for the "Notchian" server hash
// algorithm: SHA-1("Notch"), SHA-1("jeb_") and SHA-1("simon").
func TestServerIDHashKnownVectors(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Notch", "4ed1f46bbe04bc756bcb17c0c7ce3e4632f06a48"},
		{"jeb_", "-7c9d5b0044c130109a5d7b5fb5c317c02b4e28c1"},
		{"simon", "88e16a1019277b15d58faf0541e11910eb756f6"},
	}
	for _, tt := range tests {
		got := serverIDHash([]byte(tt.name), nil)
		assert.Equal(t, tt.want, got)
	}
}

func TestTwosComplementNegIsSelfInverse(t *testing.T) {
	original := []byte{0x01, 0x02, 0x03}
	neg := twosComplementNeg(original)
	back := twosComplementNeg(neg)
	assert.Equal(t, original, back)
}
