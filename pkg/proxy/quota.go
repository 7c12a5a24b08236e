package proxy

import (
	"net"
	"sync"

	"golang.org/x/time/rate"

	"github.com/skTanky/Velocity-CTD/pkg/config"
	"github.com/skTanky/Velocity-CTD/pkg/util/netutil"
)

// loginQuota rate-limits logins per source IP so a single misbehaving
// client can't hammer the Mojang session server through this proxy.
type loginQuota struct {
	enabled bool
	perSec  rate.Limit
	burst   int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newLoginQuota(cfg config.LoginRateLimit) *loginQuota {
	return &loginQuota{
		enabled:  cfg.Enabled,
		perSec:   rate.Limit(cfg.PerSec),
		burst:    cfg.Burst,
		limiters: map[string]*rate.Limiter{},
	}
}

// Allow reports whether a login attempt from addr may proceed.
func (q *loginQuota) Allow(addr net.Addr) bool {
	if !q.enabled {
		return true
	}
	host := netutil.Host(addr)
	q.mu.Lock()
	l, ok := q.limiters[host]
	if !ok {
		l = rate.NewLimiter(q.perSec, q.burst)
		q.limiters[host] = l
	}
	q.mu.Unlock()
	return l.Allow()
}
