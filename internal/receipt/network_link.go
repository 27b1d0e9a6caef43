package receipt

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

// NetworkLink talks to printers exposing a raw TCP socket (port 9100 on most
// Ethernet/Wi-Fi thermal printers). The device id is the host:port address.
// It holds at most one connection per address, so callers must not overlap
// Connect..Disconnect on the same device; PrinterEmitter serializes them.
type NetworkLink struct {
	dialer net.Dialer

	mu    sync.Mutex
	conns map[string]net.Conn
}

var _ Link = (*NetworkLink)(nil)

func NewNetworkLink(dialTimeout time.Duration) *NetworkLink {
	return &NetworkLink{
		dialer: net.Dialer{Timeout: dialTimeout},
		conns:  make(map[string]net.Conn),
	}
}

func (l *NetworkLink) Initialize(context.Context) error { return nil }

func (l *NetworkLink) Available(context.Context) (bool, error) { return true, nil }

func (l *NetworkLink) Connect(ctx context.Context, addr string) error {
	conn, err := l.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	if old, ok := l.conns[addr]; ok {
		_ = old.Close()
	}
	l.conns[addr] = conn
	l.mu.Unlock()
	return nil
}

func (l *NetworkLink) Write(ctx context.Context, addr string, payload []byte) error {
	l.mu.Lock()
	conn, ok := l.conns[addr]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("not connected to %s", addr)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	_, err := conn.Write(payload)
	return err
}

func (l *NetworkLink) Disconnect(_ context.Context, addr string) error {
	l.mu.Lock()
	conn, ok := l.conns[addr]
	delete(l.conns, addr)
	l.mu.Unlock()
	if !ok {
		return nil
	}
	return conn.Close()
}
