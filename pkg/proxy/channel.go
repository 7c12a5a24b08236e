package proxy

import (
	"sync"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proxy/message"
	"github.com/skTanky/Velocity-CTD/pkg/util/sets"
)

// channelRegistrar tracks plugin channels the proxy itself has
// registered interest in (as opposed to channels a player's client has
// registered), so incoming plugin messages on those channels can be
// routed to an internal identifier rather than just forwarded.
type channelRegistrar struct {
	mu         sync.RWMutex
	idToName   map[string]message.ChannelIdentifier
	registered sets.String
}

func newChannelRegistrar() *channelRegistrar {
	return &channelRegistrar{
		idToName:   map[string]message.ChannelIdentifier{},
		registered: sets.NewString(),
	}
}

// Register adds identifiers to the set the proxy listens for.
func (r *channelRegistrar) Register(identifiers ...message.ChannelIdentifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range identifiers {
		r.idToName[id.Id()] = id
		r.registered.Insert(id.Id())
	}
}

// Unregister removes identifiers from the set.
func (r *channelRegistrar) Unregister(identifiers ...message.ChannelIdentifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range identifiers {
		delete(r.idToName, id.Id())
		r.registered.Delete(id.Id())
	}
}

// FromId looks up a registered ChannelIdentifier by wire channel name.
func (r *channelRegistrar) FromId(channel string) (message.ChannelIdentifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idToName[channel]
	return id, ok
}

// ChannelsForProtocol returns the registered channel names for protocol;
// the caller formats them as legacy or namespaced ids as that version
// requires.
func (r *channelRegistrar) ChannelsForProtocol(protocol proto.Protocol) sets.String {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := sets.NewString()
	cp.InsertSet(r.registered)
	return cp
}
