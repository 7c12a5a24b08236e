package errs

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.minekube.com/common/minecraft/component"
)

func TestSilentErrorUnwrapsAndFormats(t *testing.T) {
	cause := errors.New("boom")
	e := NewSilent(&component.Text{Content: "kicked"}, cause)

	assert.Equal(t, "boom", e.Error())
	assert.ErrorIs(t, e, cause)
}

func TestSilentErrorWithoutCauseHasFallbackMessage(t *testing.T) {
	e := NewSilent(&component.Text{Content: "kicked"}, nil)
	assert.Equal(t, "silent protocol error", e.Error())
}

func TestIsConnClosedErrRecognizesKnownMessages(t *testing.T) {
	assert.True(t, IsConnClosedErr(errors.New("use of closed network connection")))
	assert.True(t, IsConnClosedErr(errors.New("write: broken pipe")))
	assert.True(t, IsConnClosedErr(errors.New("read: connection reset by peer")))
}

func TestIsConnClosedErrRejectsUnrelatedErrors(t *testing.T) {
	assert.False(t, IsConnClosedErr(nil))
	assert.False(t, IsConnClosedErr(errors.New("some other failure")))
	assert.False(t, IsConnClosedErr(&net.AddrError{Err: "bad addr", Addr: "x"}))
}
