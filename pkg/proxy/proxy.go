// Package proxy implements the transparent Minecraft Java Edition
// proxy core: the connection pipeline, session state machines, router,
// identity forwarding, and server-switch handoff.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.minekube.com/common/minecraft/component"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/skTanky/Velocity-CTD/pkg/config"
	"github.com/skTanky/Velocity-CTD/pkg/event"
)

// Proxy is the root object: it owns the frontend listener, the set of
// registered backend servers, the player registry, and the event bus.
type Proxy struct {
	config *config.Config
	event  *event.Manager

	authenticator Authenticator
	loginQuota    *loginQuota
	channels      *channelRegistrar
	command       *commandRegistry

	mu      sync.RWMutex
	servers map[string]*registeredServer

	connect *playerRegistry

	listener   net.Listener
	closeOnce  sync.Once
	shutdownAt atomic.Bool
}

// New returns a Proxy configured from cfg. Call Run to start accepting
// connections.
func New(cfg config.Config) *Proxy {
	p := &Proxy{
		config:        &cfg,
		event:         event.NewManager(),
		authenticator: NewAuthenticator(),
		loginQuota:    newLoginQuota(cfg.LoginRateLimit),
		channels:      newChannelRegistrar(),
		command:       newCommandRegistry(),
		servers:       map[string]*registeredServer{},
		connect:       newPlayerRegistry(),
	}
	for name, addrStr := range cfg.Servers {
		addr, err := net.ResolveTCPAddr("tcp", addrStr)
		if err != nil {
			zap.S().Warnf("invalid address %q for server %q: %v", addrStr, name, err)
			continue
		}
		p.servers[name] = newRegisteredServer(NewServerInfo(name, addr))
	}
	return p
}

// Config returns the proxy's configuration.
func (p *Proxy) Config() *config.Config { return p.config }

// Event returns the proxy's event bus.
func (p *Proxy) Event() *event.Manager { return p.event }

// ChannelRegistrar returns the registry of plugin channels the proxy
// itself listens on.
func (p *Proxy) ChannelRegistrar() *channelRegistrar { return p.channels }

// Server looks up a registered backend by name.
func (p *Proxy) Server(name string) RegisteredServer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.servers[name]
	if !ok {
		return nil
	}
	return s
}

func (p *Proxy) server(name string) *registeredServer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.servers[name]
}

// Servers returns every registered backend.
func (p *Proxy) Servers() []RegisteredServer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]RegisteredServer, 0, len(p.servers))
	for _, s := range p.servers {
		out = append(out, s)
	}
	return out
}

// Players returns the number of currently connected players.
func (p *Proxy) Players() int { return p.connect.size() }

// Run starts the frontend listener and blocks until it stops accepting
// connections, either because Shutdown was called or a fatal accept
// error occurred.
func (p *Proxy) Run() error {
	lc := net.ListenConfig{Control: setSocketOptions}
	ln, err := lc.Listen(context.Background(), "tcp", p.config.Bind)
	if err != nil {
		return fmt.Errorf("binding %s: %w", p.config.Bind, err)
	}
	p.listener = ln

	zap.S().Infof("Listening on %s", ln.Addr())
	p.event.Fire(&ListenerBound{Addr: ln.Addr().String()})
	defer p.event.Fire(&ListenerClose{Addr: ln.Addr().String()})

	for {
		c, err := ln.Accept()
		if err != nil {
			if p.shutdownAt.Load() {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return err
		}
		go p.handleRawConn(c)
	}
}

func (p *Proxy) handleRawConn(c net.Conn) {
	mc := newMinecraftConn(c, p, true, func() []zap.Field {
		return []zap.Field{zap.Stringer("remoteAddr", c.RemoteAddr())}
	})
	mc.setSessionHandler(newHandshakeSessionHandler(mc))
	mc.readLoop(context.Background())
}

// Shutdown stops accepting new connections and disconnects every
// connected player with reason.
func (p *Proxy) Shutdown(reason component.Component) {
	p.closeOnce.Do(func() {
		p.shutdownAt.Store(true)
		if p.listener != nil {
			_ = p.listener.Close()
		}
		for _, pl := range p.connect.all() {
			pl.Disconnect(reason)
		}
	})
}

// playerRegistry tracks every connectedPlayer currently logged in,
// keyed by lower-cased username, to detect and resolve duplicate logins
// from the same identity.
type playerRegistry struct {
	mu      sync.RWMutex
	byName  map[string]*connectedPlayer
	players map[*connectedPlayer]struct{}
}

func newPlayerRegistry() *playerRegistry {
	return &playerRegistry{
		byName:  map[string]*connectedPlayer{},
		players: map[*connectedPlayer]struct{}{},
	}
}

func (r *playerRegistry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

func (r *playerRegistry) all() []*connectedPlayer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*connectedPlayer, 0, len(r.players))
	for p := range r.players {
		out = append(out, p)
	}
	return out
}

// canRegisterConnection always returns true: if the name is already held,
// it disconnects the previous holder (the newer connection wins, matching
// vanilla server behaviour for duplicate logins).
func (r *playerRegistry) canRegisterConnection(p *connectedPlayer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := lowerName(p.Username())
	if existing, ok := r.byName[name]; ok {
		existing.disconnectDueToDuplicateConnection.Store(true)
		go existing.Disconnect(&component.Text{Content: "You logged in from another location."})
	}
	return true
}

func (r *playerRegistry) registerConnection(p *connectedPlayer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := lowerName(p.Username())
	r.byName[name] = p
	r.players[p] = struct{}{}
	return true
}

func (r *playerRegistry) unregisterConnection(p *connectedPlayer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := lowerName(p.Username())
	_, existed := r.players[p]
	delete(r.players, p)
	if r.byName[name] == p {
		delete(r.byName, name)
	}
	return existed
}

func lowerName(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
