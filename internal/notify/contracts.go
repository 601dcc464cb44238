package notify

import "context"

// Dispatcher receives order events. Implementations must not mutate the event.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, e Event) error

// Dispatch calls f(ctx, e).
func (f DispatcherFunc) Dispatch(ctx context.Context, e Event) error { return f(ctx, e) }

// Nop discards every event.
var Nop Dispatcher = DispatcherFunc(func(context.Context, Event) error { return nil })

type counter interface {
	Inc()
}
