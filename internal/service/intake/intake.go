package intake

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
	"github.com/primosamu/cannoli-dispatch/internal/service/delivery"
)

// NewOrder is an order as received from a sales channel.
type NewOrder struct {
	// ID is an optional external reference; a fresh UUID is used when empty.
	ID       string
	Channel  domain.Channel
	Items    []domain.Item
	Delivery delivery.Request
}

// Service accepts new orders.
type Service struct {
	repo             ordertx.Runner
	deliveries       deliveryPreparer
	dispatcher       notify.Dispatcher
	operationTimeout time.Duration
	logger           logx.Logger
	accepted         *prometheus.CounterVec
	now              func() time.Time
	newID            func() string
}

// NewService creates an intake Service. accepted may be nil; it must have the label channel.
func NewService(
	repo ordertx.Runner,
	deliveries deliveryPreparer,
	dispatcher notify.Dispatcher,
	accepted *prometheus.CounterVec,
	timeout time.Duration,
	logger logx.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	if dispatcher == nil {
		dispatcher = notify.Nop
	}
	return &Service{
		repo:             repo,
		deliveries:       deliveries,
		dispatcher:       dispatcher,
		operationTimeout: timeout,
		logger:           logger,
		accepted:         accepted,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Intake validates in, derives its delivery block and stores it as a new order.
func (s *Service) Intake(ctx context.Context, in NewOrder) (domain.Order, error) {
	items, err := normalizeItems(in.Items)
	if err != nil {
		return domain.Order{}, err
	}
	if !in.Channel.Valid() {
		return domain.Order{}, apperr.Validation(fmt.Sprintf("unknown channel %q", in.Channel))
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.newID()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var created domain.Order
	err = s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		d, err := s.deliveries.Prepare(ctx, tx, in.Channel, in.Delivery)
		if err != nil {
			return err
		}
		n, err := tx.NextOrderNumber(ctx)
		if err != nil {
			return err
		}

		now := s.now().Truncate(time.Microsecond)
		o := domain.Order{
			ID:        id,
			Number:    FormatNumber(n),
			Channel:   in.Channel,
			Status:    domain.StatusNew,
			Items:     items,
			Delivery:  d,
			CreatedAt: now,
			UpdatedAt: now,
		}
		o.RecomputeTotal()
		if d.Type != domain.DeliveryPickup {
			eta := now.Add(s.deliveries.ETA())
			o.EstimatedDeliveryTime = &eta
		}

		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	if s.accepted != nil {
		s.accepted.WithLabelValues(string(created.Channel)).Inc()
	}
	s.logger.Info("order accepted",
		logx.String("event", "order_created"),
		logx.String("order_id", created.ID),
		logx.String("number", created.Number),
		logx.String("channel", string(created.Channel)),
		logx.String("delivery", string(created.Delivery.Type)),
		logx.Int64("total_cents", int64(created.TotalAmount)),
	)

	ev := notify.Event{
		ID:          s.newID(),
		Kind:        notify.KindOrderCreated,
		MessageKey:  notify.KeyOrderCreated,
		OrderID:     created.ID,
		OrderNumber: created.Number,
		Status:      created.Status,
		Delivery:    created.Delivery,
		OccurredAt:  created.CreatedAt,
	}
	if err := s.dispatcher.Dispatch(ctx, ev); err != nil {
		s.logger.Warn("notification not delivered",
			logx.String("order_id", ev.OrderID),
			logx.String("kind", string(ev.Kind)),
			logx.Err(err),
		)
	}
	return created, nil
}

// FormatNumber renders a sequence value as a human order number, e.g. "#0042".
func FormatNumber(n int64) string {
	return fmt.Sprintf("#%04d", n)
}

func normalizeItems(in []domain.Item) ([]domain.Item, error) {
	if len(in) == 0 {
		return nil, apperr.Validation("at least one item is required")
	}
	out := make([]domain.Item, len(in))
	var total domain.Money
	for i, it := range in {
		it.Name = strings.TrimSpace(it.Name)
		it.Notes = strings.TrimSpace(it.Notes)
		switch {
		case it.Name == "":
			return nil, apperr.Validation(fmt.Sprintf("items[%d]: name is required", i))
		case it.Quantity < 1:
			return nil, apperr.Validation(fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		case it.Quantity > domain.MaxQuantity:
			return nil, apperr.Validation(fmt.Sprintf("items[%d]: quantity must be at most %d", i, domain.MaxQuantity))
		case it.UnitPrice < 0:
			return nil, apperr.Validation(fmt.Sprintf("items[%d]: unit price must not be negative", i))
		case it.UnitPrice > domain.MaxAmount:
			return nil, apperr.Validation(fmt.Sprintf("items[%d]: unit price must be at most %s", i, domain.MaxAmount))
		}
		unit := it.UnitPrice
		if len(it.Options) > 0 {
			opts := make([]domain.Option, len(it.Options))
			for j, op := range it.Options {
				op.Name = strings.TrimSpace(op.Name)
				if op.Name == "" {
					return nil, apperr.Validation(fmt.Sprintf("items[%d].options[%d]: name is required", i, j))
				}
				if op.Price < 0 {
					return nil, apperr.Validation(fmt.Sprintf("items[%d].options[%d]: price must not be negative", i, j))
				}
				if op.Price > domain.MaxAmount-unit {
					return nil, apperr.Validation(fmt.Sprintf("items[%d]: price with options must be at most %s", i, domain.MaxAmount))
				}
				unit += op.Price
				opts[j] = op
			}
			it.Options = opts
		} else {
			it.Options = nil
		}
		// unit and quantity are both capped, so the product fits in int64.
		sub := unit.Mul(it.Quantity)
		if sub > domain.MaxAmount-total {
			return nil, apperr.Validation(fmt.Sprintf("items total must be at most %s", domain.MaxAmount))
		}
		total += sub
		out[i] = it
	}
	return out, nil
}
