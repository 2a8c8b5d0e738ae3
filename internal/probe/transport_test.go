package probe

import (
	"errors"
	"net"
	"strings"
	"syscall"
	"testing"
)

func TestTransportReason_DNSNotFound(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}
	got := transportReason(err)
	if !strings.Contains(got, "dns:") || !strings.Contains(got, "nope.invalid") {
		t.Fatalf("unexpected reason: %q", got)
	}
}

func TestTransportReason_Timeout(t *testing.T) {
	err := &net.DNSError{Err: "i/o timeout", Name: "slow.invalid", IsTimeout: true}
	got := transportReason(err)
	if !strings.HasPrefix(got, "dns:") {
		t.Fatalf("dns classification should win: %q", got)
	}
}

func TestTransportReason_NilErr(t *testing.T) {
	if got := transportReason(nil); got == "" {
		t.Fatal("want non-empty fallback message")
	}
}

func TestIsConnReset(t *testing.T) {
	if !IsConnReset(syscall.ECONNRESET) {
		t.Fatal("ECONNRESET should be a reset")
	}
	if !IsConnReset(errors.New("read tcp 1.2.3.4:80: connection reset by peer")) {
		t.Fatal("reset-by-peer message should be a reset")
	}
	if IsConnReset(errors.New("dial tcp: connection refused")) {
		t.Fatal("refused is not a reset")
	}
	if IsConnReset(nil) {
		t.Fatal("nil is not a reset")
	}
}
