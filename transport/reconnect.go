package transport

import (
	"context"
	"time"
)

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Dial connects to opt.Addr over opt.Transport and performs the hello
// exchange, retrying failed attempts as opt.Reconnect allows.
func Dial(ctx context.Context, opt Options) (*Conn, error) {
	enabled, delay, max := opt.reconnect()
	if !enabled {
		return dial(ctx, opt)
	}
	return retry(ctx, opt, delay, max, func() (*Conn, error) { return dial(ctx, opt) })
}

func dial(ctx context.Context, opt Options) (*Conn, error) {
	switch opt.Transport {
	case TransportH3:
		return dialH3(ctx, opt)
	default:
		return dialQUIC(ctx, opt)
	}
}

func retry(ctx context.Context, opt Options, delay time.Duration, max int, fn func() (*Conn, error)) (*Conn, error) {
	attempts := 0
	for {
		c, err := fn()
		if err == nil {
			return c, nil
		}
		attempts++
		if max > 0 && attempts >= max {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		opt.Metrics.retried()
		opt.logger().Warn("transport: dial failed, retrying", "addr", opt.Addr, "attempt", attempts, "err", err)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}
}
