package proxy

import (
	"bufio"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// newBufferedWriter returns a *bufio.Writer with exactly `buffered` bytes
// sitting in its internal buffer, unflushed, so tests can exercise
// applyBackpressure's watermark comparisons without a real socket.
func newBufferedWriter(buffered int) *bufio.Writer {
	w := bufio.NewWriterSize(io.Discard, buffered+1)
	if buffered > 0 {
		_, _ = w.Write(make([]byte, buffered))
	}
	return w
}

func TestPauseGateBlocksUntilResumed(t *testing.T) {
	g := newPauseGate()
	g.setPaused(true)

	done := make(chan error, 1)
	go func() { done <- g.wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("wait returned before the gate was unpaused")
	case <-time.After(20 * time.Millisecond):
	}

	g.setPaused(false)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after the gate was unpaused")
	}
}

func TestPauseGateWaitReturnsImmediatelyWhenNotPaused(t *testing.T) {
	g := newPauseGate()
	assert.NoError(t, g.wait(context.Background()))
}

func TestPauseGateWaitRespectsContextCancellation(t *testing.T) {
	g := newPauseGate()
	g.setPaused(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, g.wait(ctx), context.Canceled)
}

func TestApplyBackpressurePausesAndResumesPeer(t *testing.T) {
	a := &minecraftConn{writeBuf: newBufferedWriter(writeBufferHighWatermark + 1), readGate: newPauseGate()}
	b := &minecraftConn{writeBuf: newBufferedWriter(0), readGate: newPauseGate()}
	a.setPeer(b)
	b.setPeer(a)

	a.applyBackpressure()
	assert.True(t, b.readGate.paused, "b's reads should pause once a's write buffer crosses the high watermark")

	a.writeBuf = newBufferedWriter(0)
	a.applyBackpressure()
	assert.False(t, b.readGate.paused, "b's reads should resume once a's write buffer drains to the low watermark")
}
