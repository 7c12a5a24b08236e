package proxy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAwaitJoinBlocksUntilCompleteJoin(t *testing.T) {
	server := newRegisteredServer(NewServerInfo("backend", nil))
	conn := newServerConnection(&connectedPlayer{}, server)

	done := make(chan error, 1)
	go func() { done <- conn.awaitJoin(context.Background()) }()

	select {
	case <-done:
		t.Fatal("awaitJoin returned before completeJoin ran")
	case <-time.After(20 * time.Millisecond):
	}

	conn.completeJoin()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("awaitJoin did not unblock after completeJoin")
	}
	assert.Equal(t, completedBackendPhase, conn.phase())
}

func TestAwaitJoinRespectsContextDeadline(t *testing.T) {
	server := newRegisteredServer(NewServerInfo("backend", nil))
	conn := newServerConnection(&connectedPlayer{}, server)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := conn.awaitJoin(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompleteJoinIsIdempotent(t *testing.T) {
	server := newRegisteredServer(NewServerInfo("backend", nil))
	conn := newServerConnection(&connectedPlayer{}, server)

	conn.completeJoin()
	assert.NotPanics(t, func() { conn.completeJoin() })
}
