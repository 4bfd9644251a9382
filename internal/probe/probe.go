// Package probe provides connectivity probes for the catalog orchestration.
package probe

import (
	"context"
	"net"
	"time"

	"github.com/averix-dev/catalog-gateway/internal/domain/catalog"
)

// DefaultTimeout bounds a single connectivity check.
const DefaultTimeout = 2 * time.Second

var (
	_ catalog.Prober = (*Dialer)(nil)
	_ catalog.Prober = Static(false)
)

// Dialer reports connectivity by opening a TCP connection to a well-known
// address. A successful dial means the network path is up; any dial error
// is treated as offline.
type Dialer struct {
	addr    string
	timeout time.Duration
}

// NewDialer creates a Dialer probing addr (host:port). A non-positive
// timeout falls back to DefaultTimeout.
func NewDialer(addr string, timeout time.Duration) *Dialer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dialer{addr: addr, timeout: timeout}
}

// Online dials the probe address once within the configured timeout.
func (d *Dialer) Online(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Static is a fixed-answer prober for tests and for forcing offline mode.
type Static bool

// Online returns the configured answer.
func (s Static) Online(context.Context) bool { return bool(s) }
