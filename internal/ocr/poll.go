package ocr

import (
	"context"
	"fmt"
	"time"
)

// PollConfig bounds a submit-then-poll loop. Once a job is submitted the
// adapter commits to polling until completion or this bound; there is no
// mid-flight cancellation of the vendor job itself.
type PollConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

func DefaultPollConfig() PollConfig {
	return PollConfig{MaxAttempts: 60, Interval: 2 * time.Second}
}

// pollUntil calls check at a fixed interval until it reports done, fails,
// or the attempt budget runs out. Exceeding the budget returns
// ErrPollTimeout so callers can distinguish slowness from hard failure.
func pollUntil(ctx context.Context, cfg PollConfig, check func(ctx context.Context) (done bool, err error)) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-time.After(cfg.Interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w after %d attempts (%s interval)", ErrPollTimeout, attempts, cfg.Interval)
}
