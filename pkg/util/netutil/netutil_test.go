package netutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostStripsPort(t *testing.T) {
	assert.Equal(t, "203.0.113.5", Host(NewAddr("203.0.113.5:25565", "tcp")))
}

func TestHostFallsBackToRawStringWithoutPort(t *testing.T) {
	assert.Equal(t, "no-port-here", Host(NewAddr("no-port-here", "tcp")))
}

func TestHostPortSplitsNumericPort(t *testing.T) {
	h, p := HostPort(NewAddr("203.0.113.5:25565", "tcp"))
	assert.Equal(t, "203.0.113.5", h)
	assert.Equal(t, 25565, p)
}

func TestHostPortDefaultsPortToZeroWhenMissing(t *testing.T) {
	h, p := HostPort(NewAddr("just-a-host", "tcp"))
	assert.Equal(t, "just-a-host", h)
	assert.Equal(t, 0, p)
}

func TestStripPortRemovesTrailingPort(t *testing.T) {
	assert.Equal(t, "203.0.113.5", StripPort("203.0.113.5:25565"))
	assert.Equal(t, "no-port", StripPort("no-port"))
}
