package monitor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
)

type orderLister interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// StaleOrders periodically reports open orders whose status has not moved for too long.
// It only reads the store.
type StaleOrders struct {
	repo       orderLister
	staleAfter time.Duration
	timeout    time.Duration
	gauge      *prometheus.GaugeVec
	logger     logx.Logger
	cron       *cron.Cron
	now        func() time.Time
}

// NewStaleOrders creates the monitor. gauge may be nil; it must have the label status.
func NewStaleOrders(repo orderLister, staleAfter, timeout time.Duration, gauge *prometheus.GaugeVec, logger logx.Logger) *StaleOrders {
	if logger == nil {
		logger = logx.Nop()
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &StaleOrders{
		repo:       repo,
		staleAfter: staleAfter,
		timeout:    timeout,
		gauge:      gauge,
		logger:     logger.With(logx.String("component", "stale_orders_monitor")),
		cron:       cron.New(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules Check with a cron spec such as "@every 1m".
func (m *StaleOrders) Start(schedule string) error {
	_, err := m.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		if _, err := m.Check(ctx); err != nil {
			m.logger.Error("stale order check failed", logx.Err(err))
		}
	})
	if err != nil {
		return err
	}
	m.cron.Start()
	m.logger.Info("monitor started", logx.String("schedule", schedule), logx.Duration("stale_after", m.staleAfter))
	return nil
}

// Stop stops scheduling and waits for a running check to finish or ctx to expire.
func (m *StaleOrders) Stop(ctx context.Context) {
	select {
	case <-m.cron.Stop().Done():
	case <-ctx.Done():
	}
	m.logger.Info("monitor stopped")
}

// Check returns the stale open orders and refreshes the gauge.
func (m *StaleOrders) Check(ctx context.Context) ([]domain.Order, error) {
	orders, err := m.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := m.now().Add(-m.staleAfter)
	counts := make(map[domain.OrderStatus]int)
	var stale []domain.Order
	for _, o := range orders {
		if o.Status.Terminal() || !o.UpdatedAt.Before(cutoff) {
			continue
		}
		stale = append(stale, o)
		counts[o.Status]++
		m.logger.Warn("order is stale",
			logx.String("order_id", o.ID),
			logx.String("number", o.Number),
			logx.String("status", string(o.Status)),
			logx.Time("updated_at", o.UpdatedAt),
		)
	}

	if m.gauge != nil {
		for _, s := range domain.Statuses() {
			if s.Terminal() {
				continue
			}
			m.gauge.WithLabelValues(string(s)).Set(float64(counts[s]))
		}
	}
	return stale, nil
}
