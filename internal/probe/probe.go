package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/iwatkot/maps4fs-launcher/internal/retry"
)

// DialTimeout bounds a single connection attempt
const DialTimeout = 2 * time.Second

// Check performs a single TCP connect against addr. A successful connect
// means something is accepting on the port; it says nothing about HTTP health.
func Check(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, DialTimeout)
	if err != nil {
		return fmt.Errorf("port not ready at %s: %w", addr, err)
	}
	conn.Close()
	return nil
}

// WaitReady polls addr with exponential backoff until it accepts a TCP
// connection, the retry budget is exhausted, or ctx is cancelled
func WaitReady(ctx context.Context, addr string, cfg retry.Config) error {
	return retry.Do(ctx, cfg, func() error {
		return Check(addr)
	})
}
