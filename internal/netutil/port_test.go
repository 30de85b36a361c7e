package netutil

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

// listen opens a listener on a kernel-assigned loopback port and closes it
// when the test ends.
func listen(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// freeAddr returns a loopback address that was free a moment ago.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestCheckPortFree(t *testing.T) {
	t.Parallel()

	t.Run("bound port", func(t *testing.T) {
		t.Parallel()
		l := listen(t)
		err := CheckPortFree(l.Addr().String())
		if !errors.Is(err, ErrPortInUse) {
			t.Fatalf("CheckPortFree() error = %v, want %v", err, ErrPortInUse)
		}
	})

	t.Run("free port", func(t *testing.T) {
		t.Parallel()
		if err := CheckPortFree(freeAddr(t)); err != nil {
			t.Fatalf("CheckPortFree() error: %v", err)
		}
	})

	t.Run("malformed address", func(t *testing.T) {
		t.Parallel()
		err := CheckPortFree("no-port-here")
		if err == nil {
			t.Fatal("expected error for malformed address")
		}
		if errors.Is(err, ErrPortInUse) {
			t.Fatal("malformed address must not be reported as in use")
		}
	})
}

func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("listening", func(t *testing.T) {
		t.Parallel()
		l := listen(t)
		go func() {
			for {
				conn, err := l.Accept()
				if err != nil {
					return
				}
				_ = conn.Close()
			}
		}()

		ok, err := Probe(context.Background(), l.Addr().String(), time.Second)
		if !ok {
			t.Fatalf("Probe() = false, err = %v; want true", err)
		}
	})

	t.Run("refused", func(t *testing.T) {
		t.Parallel()
		ok, err := Probe(context.Background(), freeAddr(t), 0)
		if ok {
			t.Fatal("Probe() = true for closed port")
		}
		if err == nil {
			t.Fatal("expected dial error for closed port")
		}
	})
}
