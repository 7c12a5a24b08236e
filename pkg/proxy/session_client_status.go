package proxy

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"

	"github.com/skTanky/Velocity-CTD/pkg/proto"
	"github.com/skTanky/Velocity-CTD/pkg/proto/packet"
)

// statusSessionHandler answers StatusRequest/Ping on a connection that
// declared next=Status in its handshake. The status is always synthesized
// by buildStatusResponse and cached per (vhost, protocol) for a short
// window via an LRU so a flood of server-list pings doesn't each trigger
// a fresh status build. The PingPassthrough setting is not consulted and
// no backend is queried for its status.
type statusSessionHandler struct {
	conn  *minecraftConn
	vhost net.Addr
}

func newStatusSessionHandler(conn *minecraftConn, vhost net.Addr) sessionHandler {
	return &statusSessionHandler{conn: conn, vhost: vhost}
}

var _ sessionHandler = (*statusSessionHandler)(nil)

func (h *statusSessionHandler) activated()    {}
func (h *statusSessionHandler) deactivated()  {}
func (h *statusSessionHandler) disconnected() {}

func (h *statusSessionHandler) handleUnknownPacket(p *proto.PacketContext) {
	_ = h.conn.close()
}

func (h *statusSessionHandler) handlePacket(ctx context.Context, p proto.Packet) {
	switch typed := p.(type) {
	case *packet.StatusRequest:
		h.handleStatusRequest()
	case *packet.Ping:
		_ = h.conn.WritePacket(&packet.Ping{Payload: typed.Payload})
		_ = h.conn.close()
	default:
		_ = h.conn.close()
	}
}

func (h *statusSessionHandler) handleStatusRequest() {
	body := statusCache.get(h.vhost.String(), h.conn.Protocol())
	_ = h.conn.WritePacket(&packet.StatusResponse{Status: body})
}

// statusResponseCache is the LRU the status handler consults before
// building a fresh response, keyed by "vhost|protocol".
type statusResponseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries *lru.Cache
}

type cachedStatus struct {
	body      string
	expiresAt time.Time
}

var statusCache = &statusResponseCache{ttl: 5 * time.Second, entries: lru.New(256)}

func (c *statusResponseCache) get(vhost string, protocol proto.Protocol) string {
	key := fmt.Sprintf("%s|%s", vhost, protocol)

	c.mu.Lock()
	if v, ok := c.entries.Get(key); ok {
		cs := v.(*cachedStatus)
		if time.Now().Before(cs.expiresAt) {
			c.mu.Unlock()
			return cs.body
		}
	}
	c.mu.Unlock()

	body := buildStatusResponse(protocol)

	c.mu.Lock()
	c.entries.Add(key, &cachedStatus{body: body, expiresAt: time.Now().Add(c.ttl)})
	c.mu.Unlock()
	return body
}

// buildStatusResponse synthesizes a minimal, valid status JSON body.
// A full MOTD/favicon renderer is an external collaborator; this only
// guarantees a client's server list entry shows something sane.
func buildStatusResponse(protocol proto.Protocol) string {
	return fmt.Sprintf(`{"version":{"name":"%s","protocol":%d},"players":{"max":-1,"online":0},"description":{"text":"A Minecraft Server"}}`,
		protocol, int(protocol))
}
