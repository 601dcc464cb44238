package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	obs "github.com/primosamu/cannoli-dispatch/internal/http/middleware"
	"github.com/primosamu/cannoli-dispatch/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceeded    prometheus.Counter     `name:"rate_limit_exceeded_total"`
	NotifyRetries        prometheus.Counter     `name:"notify_retries_total"`
	NotificationsDropped prometheus.Counter     `name:"notifications_dropped_total"`
	Dispatched           *prometheus.CounterVec `name:"notifications_dispatched_total"`
	Transitions          *prometheus.CounterVec `name:"order_transitions_total"`
	Assignments          *prometheus.CounterVec `name:"delivery_assignments_total"`
	Intake               *prometheus.CounterVec `name:"orders_intake_total"`
	Stale                *prometheus.GaugeVec   `name:"orders_stale"`
	HTTP                 obs.HTTPMetrics
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg prometheus.Registerer) (metricsOut, error) {
	var (
		out  metricsOut
		errs []error
	)
	out.RateLimitExceeded = registerCollector(reg, "rate_limit_exceeded_total", metrics.NewRateLimitExceededTotal(), &errs)
	out.NotifyRetries = registerCollector(reg, "notify_retries_total", metrics.NewNotifyRetriesTotal(), &errs)
	out.NotificationsDropped = registerCollector(reg, "notifications_dropped_total", metrics.NewNotificationsDroppedTotal(), &errs)
	out.Dispatched = registerCollector(reg, "notifications_dispatched_total", metrics.NewNotificationsDispatchedTotal(), &errs)
	out.Transitions = registerCollector(reg, "order_transitions_total", metrics.NewOrderTransitionsTotal(), &errs)
	out.Assignments = registerCollector(reg, "delivery_assignments_total", metrics.NewDeliveryAssignmentsTotal(), &errs)
	out.Intake = registerCollector(reg, "orders_intake_total", metrics.NewOrdersIntakeTotal(), &errs)
	out.Stale = registerCollector(reg, "orders_stale", metrics.NewOrdersStale(), &errs)

	h := obs.NewHTTPMetrics()
	out.HTTP = obs.HTTPMetrics{
		Requests: registerCollector(reg, "http_requests_total", h.Requests, &errs),
		Duration: registerCollector(reg, "http_request_duration_seconds", h.Duration, &errs),
	}

	if err := errors.Join(errs...); err != nil {
		return metricsOut{}, err
	}
	return out, nil
}

// registerCollector returns the already registered collector when one with the same
// descriptor exists, so a second container in one process shares the series.
func registerCollector[T prometheus.Collector](reg prometheus.Registerer, name string, c T, errs *[]error) T {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	*errs = append(*errs, fmt.Errorf("register %s: %w", name, err))
	return c
}
