package proto

import (
	"context"
	"fmt"
	"time"
)

// keepalive pings Discord every PingInterval and fails when a pong does not
// arrive within PingTimeout.
func (c *Conn) keepalive(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.ping(ctx); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
		}
	}
}

func (c *Conn) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.PingTimeout)
	defer cancel()

	// Drop a pong left over from an earlier, timed out ping.
	select {
	case <-c.pongs:
	default:
	}

	if err := c.conn.Write(ctx, pingOpcode, []byte("{}")); err != nil {
		return fmt.Errorf("failed to write ping: %w", err)
	}

	select {
	case <-c.pongs:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) handlePong() {
	select {
	case c.pongs <- struct{}{}:
	default:
	}
}
