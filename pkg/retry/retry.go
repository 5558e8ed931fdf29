package retry

import (
	"context"
	"math/rand"
	"time"
)

type Config struct {
	// Attempts is the total number of tries. 0 means try until the
	// context is cancelled.
	Attempts int
	Base     time.Duration
	Factor   float64
	Cap      time.Duration
	Jitter   time.Duration
}

// Backoff returns the default schedule used while waiting for the model
// backend to come up: quick first probes, capped at a few seconds.
func Backoff() Config {
	return Config{
		Attempts: 0,
		Base:     500 * time.Millisecond,
		Factor:   2.0,
		Cap:      5 * time.Second,
		Jitter:   100 * time.Millisecond,
	}
}

// Do runs op until it succeeds, the attempt budget is spent, or ctx is
// cancelled. The last operation error is returned when the budget runs out.
func Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	delay := cfg.Base
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}

		if cfg.Attempts > 0 && attempt >= cfg.Attempts {
			return err
		}

		wait := delay
		if cfg.Jitter > 0 {
			wait += time.Duration(rnd.Float64() * float64(cfg.Jitter))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Factor)
		if cfg.Cap > 0 && delay > cfg.Cap {
			delay = cfg.Cap
		}
	}
}
