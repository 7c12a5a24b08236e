// Package errs provides shared error helpers for classifying connection
// and protocol failures without resorting to exceptions.
package errs

import (
	"strings"

	"go.minekube.com/common/minecraft/component"
)

// SilentError wraps a fatal protocol error that already carries a
// chat-formatted close reason for the peer; callers should not log it
// again with its own message, just the reason.
type SilentError struct {
	Reason component.Component
	err    error
}

// NewSilent returns a SilentError closing the connection with reason.
func NewSilent(reason component.Component, err error) *SilentError {
	return &SilentError{Reason: reason, err: err}
}

func (e *SilentError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return "silent protocol error"
}

func (e *SilentError) Unwrap() error { return e.err }

// IsConnClosedErr reports whether err indicates the underlying socket
// was already closed by either side.
func IsConnClosedErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}
