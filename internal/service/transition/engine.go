package transition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
	"github.com/primosamu/cannoli-dispatch/internal/notify"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
)

// Engine moves orders along the status graph.
type Engine struct {
	repo             ordertx.Runner
	couriers         DeliveryCounter
	dispatcher       notify.Dispatcher
	operationTimeout time.Duration
	logger           logx.Logger
	transitions      *prometheus.CounterVec
	now              func() time.Time
	newID            func() string
}

// NewEngine creates an Engine. transitions may be nil; it must have labels from and to.
func NewEngine(
	repo ordertx.Runner,
	couriers DeliveryCounter,
	dispatcher notify.Dispatcher,
	transitions *prometheus.CounterVec,
	timeout time.Duration,
	logger logx.Logger,
) *Engine {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if dispatcher == nil {
		dispatcher = notify.Nop
	}
	return &Engine{
		repo:             repo,
		couriers:         couriers,
		dispatcher:       dispatcher,
		operationTimeout: timeout,
		logger:           logger,
		transitions:      transitions,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.operationTimeout)
}

// Transition moves the order to target if the graph allows it.
// expectedUpdatedAt, when set, must equal the stored updatedAt.
// Completing an own delivery credits the courier in the same transaction.
func (e *Engine) Transition(
	ctx context.Context,
	orderID string,
	target domain.OrderStatus,
	expectedUpdatedAt *time.Time,
) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, apperr.ErrNotFound
	}
	if !target.Valid() {
		return domain.Order{}, apperr.Validation(fmt.Sprintf("unknown status %q", target))
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	var (
		updated  domain.Order
		previous domain.OrderStatus
	)
	err := e.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if expectedUpdatedAt != nil && !o.UpdatedAt.Equal(*expectedUpdatedAt) {
			return apperr.ErrConflict
		}
		if !domain.CanTransition(o.Status, target) {
			return &apperr.TransitionError{From: string(o.Status), To: string(target)}
		}

		expected := o.UpdatedAt
		previous = o.Status
		o.Status = target
		o.Touch(e.now())

		if err := tx.UpdateOrder(ctx, o, expected); err != nil {
			return err
		}
		if target == domain.StatusCompleted && o.Delivery.Type == domain.DeliveryOwn && o.Delivery.CourierID != "" {
			if err := e.couriers.IncrementDeliveryCount(ctx, tx, o.Delivery.CourierID); err != nil {
				return err
			}
		}
		updated = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if e.transitions != nil {
		e.transitions.WithLabelValues(string(previous), string(target)).Inc()
	}
	e.logger.Info("order status changed",
		logx.String("event", "order_transition"),
		logx.String("order_id", updated.ID),
		logx.String("from", string(previous)),
		logx.String("to", string(target)),
	)

	ev := notify.Event{
		ID:             e.newID(),
		Kind:           notify.KindStatusChanged,
		MessageKey:     notify.StatusMessageKey(target),
		OrderID:        updated.ID,
		OrderNumber:    updated.Number,
		Status:         target,
		PreviousStatus: previous,
		Delivery:       updated.Delivery,
		OccurredAt:     updated.UpdatedAt,
	}
	if err := e.dispatcher.Dispatch(ctx, ev); err != nil {
		e.logger.Warn("notification not delivered",
			logx.String("order_id", ev.OrderID),
			logx.String("kind", string(ev.Kind)),
			logx.Err(err),
		)
	}
	return updated, nil
}
