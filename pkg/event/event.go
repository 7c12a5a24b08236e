// Package event implements the minimal synchronous event bus the core
// notifies on lifecycle transitions. The bus itself is part of the
// core; the handlers that subscribe to it (commands, plugins) are
// external collaborators.
package event

import (
	"reflect"
	"sync"
)

// Event is a marker interface implemented by every event type the
// proxy fires.
type Event interface{}

// Manager dispatches events to subscribers. Subscribers each run on
// their own goroutine; Fire still blocks the caller until every
// subscriber has returned, because firing an event is a synchronous
// request from the core's perspective.
type Manager struct {
	mu   sync.RWMutex
	subs map[reflect.Type][]func(Event)
}

// NewManager returns a ready-to-use Manager.
func NewManager() *Manager {
	return &Manager{subs: map[reflect.Type][]func(Event){}}
}

// Subscribe registers fn to run whenever an event of the same concrete
// type as sample is fired.
func (m *Manager) Subscribe(sample Event, fn func(Event)) {
	t := reflect.TypeOf(sample)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[t] = append(m.subs[t], fn)
}

// Fire runs every subscriber for e's type, each on its own goroutine,
// and blocks until all have completed.
func (m *Manager) Fire(e Event) {
	handlers := m.handlersFor(e)
	if len(handlers) == 0 {
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(handlers))
	for _, h := range handlers {
		go func(h func(Event)) {
			defer wg.Done()
			h(e)
		}(h)
	}
	wg.Wait()
}

// FireParallel fires e without blocking the caller; once every
// subscriber has completed, cb is invoked with e so the caller can act
// on whatever the subscribers mutated on it (e.g. an Allowed() flag).
func (m *Manager) FireParallel(e Event, cb func(Event)) {
	go func() {
		m.Fire(e)
		if cb != nil {
			cb(e)
		}
	}()
}

func (m *Manager) handlersFor(e Event) []func(Event) {
	t := reflect.TypeOf(e)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]func(Event){}, m.subs[t]...)
}
