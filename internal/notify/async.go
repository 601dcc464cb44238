package notify

import (
	"context"
	"sync"
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/logx"
)

// Async decouples callers from delivery: Dispatch enqueues and returns immediately.
// When the queue is full the event is dropped and counted.
type Async struct {
	next    Dispatcher
	queue   chan Event
	logger  logx.Logger
	dropped counter
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsync starts the delivery loop. timeout bounds a single delivery to next.
func NewAsync(next Dispatcher, size int, timeout time.Duration, logger logx.Logger, dropped counter) *Async {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	a := &Async{
		next:    next,
		queue:   make(chan Event, size),
		logger:  logger,
		dropped: dropped,
		timeout: timeout,
		done:    make(chan struct{}),
	}
	go a.loop()
	return a
}

// Dispatch enqueues e. It never blocks and never fails.
func (a *Async) Dispatch(_ context.Context, e Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		a.drop(e, "dispatcher closed")
		return nil
	}
	select {
	case a.queue <- e:
	default:
		a.drop(e, "queue full")
	}
	return nil
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) loop() {
	defer close(a.done)
	for e := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Dispatch(ctx, e); err != nil {
			a.logger.Warn("notification delivery failed",
				logx.String("event_id", e.ID),
				logx.String("kind", string(e.Kind)),
				logx.String("order_id", e.OrderID),
				logx.Any("err", err),
			)
		}
		cancel()
	}
}

func (a *Async) drop(e Event, reason string) {
	if a.dropped != nil {
		a.dropped.Inc()
	}
	a.logger.Warn("notification dropped",
		logx.String("reason", reason),
		logx.String("event_id", e.ID),
		logx.String("order_id", e.OrderID),
	)
}
