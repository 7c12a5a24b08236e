package event

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fooEvent struct{ value int }
type barEvent struct{}

func TestFireDispatchesOnlyMatchingType(t *testing.T) {
	m := NewManager()
	var fooCount, barCount int32

	m.Subscribe(fooEvent{}, func(e Event) { atomic.AddInt32(&fooCount, 1) })
	m.Subscribe(barEvent{}, func(e Event) { atomic.AddInt32(&barCount, 1) })

	m.Fire(fooEvent{value: 1})

	assert.Equal(t, int32(1), atomic.LoadInt32(&fooCount))
	assert.Equal(t, int32(0), atomic.LoadInt32(&barCount))
}

func TestFireRunsAllSubscribersAndBlocksUntilDone(t *testing.T) {
	m := NewManager()
	var calls int32
	for i := 0; i < 5; i++ {
		m.Subscribe(fooEvent{}, func(e Event) {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&calls, 1)
		})
	}
	m.Fire(fooEvent{})
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestFireMutatesSharedEventState(t *testing.T) {
	m := NewManager()
	type cancellable struct{ cancelled bool }
	var e cancellable
	m.Subscribe(&e, func(ev Event) { ev.(*cancellable).cancelled = true })
	m.Fire(&e)
	assert.True(t, e.cancelled)
}

func TestFireParallelInvokesCallbackAfterSubscribersComplete(t *testing.T) {
	m := NewManager()
	var touched int32
	m.Subscribe(fooEvent{}, func(e Event) { atomic.StoreInt32(&touched, 1) })

	done := make(chan struct{})
	m.FireParallel(fooEvent{}, func(e Event) {
		assert.Equal(t, int32(1), atomic.LoadInt32(&touched))
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("FireParallel callback never ran")
	}
}

func TestFireWithNoSubscribersIsANoop(t *testing.T) {
	m := NewManager()
	assert.NotPanics(t, func() { m.Fire(fooEvent{}) })
}
