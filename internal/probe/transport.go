package probe

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// transportReason turns a transport-level error into the message stored on a
// synthetic unhealthy result, with DNS and timeout failures called out.
func transportReason(err error) string {
	if err == nil {
		return "unknown transport error"
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			return "dns: no such host (" + de.Name + ")"
		}
		return "dns: " + de.Err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout: " + err.Error()
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused: " + err.Error()
	}
	return err.Error()
}

// IsConnReset reports whether err looks like the peer reset the connection.
// The deploy client treats only this (or HTTP >= 500) as retryable; the
// prober retries any transport error. The two predicates stay separate.
func IsConnReset(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	return strings.Contains(err.Error(), "connection reset by peer")
}
