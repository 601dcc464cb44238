package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink is a named dispatcher taking part in a fan-out.
type Sink struct {
	Name string
	Dispatcher
}

// Fanout delivers each event to every sink and reports all failures.
type Fanout struct {
	sinks   []Sink
	results *prometheus.CounterVec
}

// NewFanout creates a Fanout. results may be nil; it must have labels sink and result.
func NewFanout(results *prometheus.CounterVec, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, results: results}
}

// Dispatch delivers e to all sinks, even when some fail.
func (f *Fanout) Dispatch(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range f.sinks {
		err := s.Dispatch(ctx, e)
		result := "ok"
		if err != nil {
			result = "error"
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
		if f.results != nil {
			f.results.WithLabelValues(s.Name, result).Inc()
		}
	}
	return errors.Join(errs...)
}
