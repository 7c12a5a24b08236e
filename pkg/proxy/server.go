package proxy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.minekube.com/common/minecraft/component"
	"go.uber.org/atomic"
	"go.uber.org/zap"

)

// ServerInfo is the static, configured description of a backend.
type ServerInfo interface {
	Name() string
	Addr() net.Addr
}

type serverInfo struct {
	name string
	addr net.Addr
}

func (s *serverInfo) Name() string   { return s.name }
func (s *serverInfo) Addr() net.Addr { return s.addr }

// NewServerInfo returns a ServerInfo for a configured server name/address.
func NewServerInfo(name string, addr net.Addr) ServerInfo {
	return &serverInfo{name: name, addr: addr}
}

// RegisteredServer is a backend server the proxy knows how to dial and
// can route players to.
type RegisteredServer interface {
	ServerInfo() ServerInfo
	Players() int
}

type registeredServer struct {
	info ServerInfo

	mu      sync.RWMutex
	players map[*connectedPlayer]struct{}
}

func newRegisteredServer(info ServerInfo) *registeredServer {
	return &registeredServer{info: info, players: map[*connectedPlayer]struct{}{}}
}

func (r *registeredServer) ServerInfo() ServerInfo { return r.info }

func (r *registeredServer) Players() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

func (r *registeredServer) addPlayer(p *connectedPlayer) {
	r.mu.Lock()
	r.players[p] = struct{}{}
	r.mu.Unlock()
}

func (r *registeredServer) removePlayer(p *connectedPlayer) {
	r.mu.Lock()
	delete(r.players, p)
	r.mu.Unlock()
}

// ServerConnection is the player-facing view of their current backend
// connection.
type ServerConnection interface {
	Server() RegisteredServer
}

// serverConnection drives the proxy -> backend half of a session: it
// dials the backend, replays Handshake/Login with the configured
// identity-forwarding scheme, and once Play is reached, relays packets
// until the player switches again or disconnects.
type serverConnection struct {
	player *connectedPlayer
	server *registeredServer

	completedJoin atomic.Bool
	lastPingId    atomic.Int64
	lastPingSent  atomic.Int64

	mu        sync.RWMutex
	conn_     *minecraftConn
	phase_    backendConnectionPhase
	connected atomic.Bool

	joined     chan struct{}
	joinedOnce sync.Once
}

var _ ServerConnection = (*serverConnection)(nil)

func newServerConnection(player *connectedPlayer, server *registeredServer) *serverConnection {
	return &serverConnection{player: player, server: server, phase_: unknownBackendPhase, joined: make(chan struct{})}
}

// awaitJoin blocks until the backend has signaled JoinGame (completeJoin
// ran) or ctx is done, whichever comes first.
func (s *serverConnection) awaitJoin(ctx context.Context) error {
	select {
	case <-s.joined:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *serverConnection) Server() RegisteredServer { return s.server }

func (s *serverConnection) conn() *minecraftConn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn_
}

func (s *serverConnection) phase() backendConnectionPhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase_
}

func (s *serverConnection) setPhase(p backendConnectionPhase) {
	s.mu.Lock()
	s.phase_ = p
	s.mu.Unlock()
}

func (s *serverConnection) ensureConnected() (*minecraftConn, bool) {
	c := s.conn()
	return c, c != nil && s.connected.Load()
}

func (s *serverConnection) ensureConnectedQuiet() bool {
	_, ok := s.ensureConnected()
	return ok
}

func (s *serverConnection) completeJoin() {
	s.completedJoin.Store(true)
	s.setPhase(completedBackendPhase)
	s.joinedOnce.Do(func() { close(s.joined) })
}

// connect dials the backend server, drives it through Handshake/Login
// (including identity forwarding), and on success leaves the backend
// connection with a backendPlaySessionHandler. The player's
// clientPlaySessionHandler is installed later, when the backend's JoinGame
// arrives.
func (s *serverConnection) connect(ctx context.Context) error {
	cfg := s.player.proxy.Config()
	dialTimeout := time.Duration(cfg.ConnectionTimeout) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	var dialer net.Dialer
	rawConn, err := dialer.DialContext(ctx, "tcp", s.server.info.Addr().String())
	if err != nil {
		return fmt.Errorf("dialing backend %s: %w", s.server.info.Name(), err)
	}

	mc := newMinecraftConn(rawConn, s.player.proxy, false, func() []zap.Field {
		return []zap.Field{
			zap.String("server", s.server.info.Name()),
			zap.String("player", s.player.Username()),
		}
	})
	mc.setType(vanillaConnectionType)

	s.mu.Lock()
	s.conn_ = mc
	s.phase_ = inTransitionBackendPhase
	s.mu.Unlock()

	go mc.readLoop(context.Background())

	handler := newBackendLoginSessionHandler(s, mc)
	mc.setSessionHandler(handler)

	if err := handler.start(ctx); err != nil {
		_ = mc.close()
		return err
	}

	mc.setPeer(s.player.minecraftConn)
	s.player.minecraftConn.setPeer(mc)

	s.connected.Store(true)
	return nil
}

// disconnect tears down the backend connection, if any.
func (s *serverConnection) disconnect() {
	s.server.removePlayer(s.player)
	c := s.conn()
	if c != nil {
		if c.peer() == s.player.minecraftConn {
			s.player.minecraftConn.setPeer(nil)
		}
		_ = c.close()
	}
	s.connected.Store(false)
}

var ErrServerConnectTimeout = errors.New("connection to backend server timed out")

// kickedFromServerComponent builds a minimal component describing a
// reason a backend server kicked us, used when no structured reason
// was decoded.
func kickedFromServerComponent(reason string) component.Component {
	return &component.Text{Content: reason}
}
