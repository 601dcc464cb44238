package notify

import (
	"context"
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/logx"
)

// RetryConfig controls Retrying.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retrying re-sends failed events with exponential backoff. Permanent errors are not retried.
type Retrying struct {
	next    Dispatcher
	name    string
	logger  logx.Logger
	retries counter
	cfg     RetryConfig
}

// NewRetrying wraps next. A nil next yields nil.
func NewRetrying(next Dispatcher, name string, logger logx.Logger, retries counter, cfg RetryConfig) *Retrying {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Retrying{next: next, name: name, logger: logger, retries: retries, cfg: cfg}
}

// Dispatch delivers e, retrying transient failures.
func (r *Retrying) Dispatch(ctx context.Context, e Event) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		err := r.next.Dispatch(ctx, e)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || attempt == r.cfg.MaxAttempts || IsPermanent(err) {
			break
		}

		delay := backoff(r.cfg.BaseDelay, r.cfg.MaxDelay, attempt)
		if r.retries != nil {
			r.retries.Inc()
		}
		r.logger.Warn("notification retry",
			logx.String("sink", r.name),
			logx.String("event_id", e.ID),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Any("err", err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

// backoff вычисляет задержку повтора
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max || d < 0 {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
