// Package netutil holds small net.Addr helpers shared by the router,
// the identity-forwarding codecs, and the socket-option setup.
package netutil

import (
	"net"
	"strings"
)

// Host returns just the host portion of addr, stripping any port.
func Host(addr net.Addr) string {
	s := addr.String()
	if h, _, err := net.SplitHostPort(s); err == nil {
		return h
	}
	return s
}

// HostPort splits addr into host and port, tolerating addresses with
// no port (port is returned as 0).
func HostPort(addr net.Addr) (string, int) {
	s := addr.String()
	h, p, err := net.SplitHostPort(s)
	if err != nil {
		return s, 0
	}
	port := 0
	for _, c := range p {
		if c < '0' || c > '9' {
			return h, 0
		}
		port = port*10 + int(c-'0')
	}
	return h, port
}

// NewAddr returns a net.Addr for an already host:port formatted address
// string using the given network ("tcp"/"udp").
func NewAddr(hostport, network string) net.Addr {
	return &addr{hostport: hostport, network: network}
}

type addr struct {
	hostport string
	network  string
}

func (a *addr) Network() string { return a.network }
func (a *addr) String() string  { return a.hostport }

// StripPort strips a trailing ":port" from s, if present.
func StripPort(s string) string {
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[:i]
	}
	return s
}
