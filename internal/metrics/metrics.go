package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewNotifyRetriesTotal returns a Prometheus counter for retry attempts performed by notification sinks
func NewNotifyRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notify_retries_total",
		Help: "Total number of retry attempts performed by notification sinks",
	})
}

// NewNotificationsDroppedTotal returns a counter for events dropped because the dispatch queue was full
func NewNotificationsDroppedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifications_dropped_total",
		Help: "Total number of notifications dropped before reaching any sink",
	})
}

// NewNotificationsDispatchedTotal counts sink deliveries by sink and result (ok|error)
func NewNotificationsDispatchedTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Notifications handed to a sink, by sink and result",
	}, []string{"sink", "result"})
}

// NewOrderTransitionsTotal counts applied status transitions
func NewOrderTransitionsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Applied order status transitions",
	}, []string{"from", "to"})
}

// NewDeliveryAssignmentsTotal counts delivery assignments by type and kind (assigned|reassigned)
func NewDeliveryAssignmentsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_assignments_total",
		Help: "Delivery assignments by delivery type and kind",
	}, []string{"type", "kind"})
}

// NewOrdersIntakeTotal counts accepted orders per channel
func NewOrdersIntakeTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_intake_total",
		Help: "Orders accepted by channel",
	}, []string{"channel"})
}

// NewOrdersStale reports how many open orders have not moved for too long, per status
func NewOrdersStale() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orders_stale",
		Help: "Open orders without a status change for longer than the stale threshold",
	}, []string{"status"})
}
