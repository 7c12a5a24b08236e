package proxy

import (
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// ipTOSLowDelay requests low-delay routing (DSCP "Expedited Forwarding"-
// adjacent) for the game traffic this proxy relays, matching the "IP_TOS
// 0x18" tuning vanilla Minecraft servers apply to their listener socket.
const ipTOSLowDelay = 0x18

// setSocketOptions is a net.ListenConfig.Control hook, so it runs on the
// listening socket's fd and tunes it for low-latency game traffic:
// TCP_NODELAY (disable Nagle), IP_TOS (low-delay DSCP), and - where the
// platform supports it - TCP_FASTOPEN. Dialed backend sockets are not
// passed through it.
func setSocketOptions(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		if sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1); sockErr != nil {
			return
		}
		if sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TOS, ipTOSLowDelay); sockErr != nil {
			// Not fatal: some platforms/containers deny IP_TOS on a listener.
			zap.L().Debug("failed to set IP_TOS on listener socket", zap.Error(sockErr))
			sockErr = nil
		}
		if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_FASTOPEN, 3); err != nil {
			zap.L().Debug("TCP_FASTOPEN not supported on this platform", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}
