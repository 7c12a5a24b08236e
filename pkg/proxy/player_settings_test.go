package proxy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skTanky/Velocity-CTD/pkg/config"
	"github.com/skTanky/Velocity-CTD/pkg/proto/packet"
	"github.com/skTanky/Velocity-CTD/pkg/util/gameprofile"
)

func newTestPlayer(t *testing.T) *connectedPlayer {
	t.Helper()
	proxy := newTestProxy(t, config.Config{})
	conn := &minecraftConn{proxy: proxy}
	return newConnectedPlayer(conn, &gameprofile.GameProfile{Name: "Notch"}, nil, false)
}

// Settings() previously leaked its read lock whenever p.settings was
// already populated, since only the nil-settings branch called
// RUnlock(). A second call after settings were set would then block
// forever on anything needing the write lock (setConnectedServer,
// teardown, ...). This reproduces that scenario.
func TestSettingsDoesNotLeakReadLockOncePopulated(t *testing.T) {
	p := newTestPlayer(t)

	p.setSettings(&packet.ClientSettings{Locale: "en_US"})
	_ = p.Settings()
	_ = p.Settings()

	done := make(chan struct{})
	go func() {
		p.setConnectedServer(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("setConnectedServer blocked, Settings() must have leaked its read lock")
	}
}

func TestSettingsFallsBackToDefaultWhenUnset(t *testing.T) {
	p := newTestPlayer(t)
	assert.Equal(t, "en_US", p.Settings().Locale())

	require.NotPanics(t, func() {
		p.setConnectedServer(nil)
	})
}
