package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/giantswarm/sidecarrun/internal/sentinel"
)

// ErrPortInUse is returned by CheckPortFree when another process already
// listens on the address.
const ErrPortInUse = sentinel.Error("address already in use")

// DefaultDialTimeout is the per-attempt timeout for Probe. Connection refused
// returns immediately, so this only bounds pathological cases such as a SYN
// that never gets an answer.
const DefaultDialTimeout = time.Second

// CheckPortFree reports whether addr (host:port) can be bound. It binds and
// immediately releases a listener, so a nil result is advisory: another
// process can still take the port before the dependency does.
func CheckPortFree(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("parse address %q: %w", addr, err)
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%s: %w", addr, ErrPortInUse)
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if err := l.Close(); err != nil {
		return fmt.Errorf("close probe listener on %s: %w", addr, err)
	}
	return nil
}

// Probe dials addr once and reports whether a TCP connection was accepted.
// Dial errors mean "not ready yet" and are returned for logging only.
func Probe(ctx context.Context, addr string, dialTimeout time.Duration) (bool, error) {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, err
	}
	_ = conn.Close() // best-effort close of the probe connection
	return true, nil
}
