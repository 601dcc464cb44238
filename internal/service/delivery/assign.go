package delivery

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

// Request is an operator's delivery choice for an order.
type Request struct {
	Type         domain.DeliveryType
	CourierID    string
	Company      domain.DeliveryCompany
	TrackingCode string
	// Notes replaces the delivery notes when set.
	Notes *string
	// ExpectedUpdatedAt, when set, must equal the stored updatedAt.
	ExpectedUpdatedAt *time.Time
}

// Service assigns and reassigns the delivery block of orders. It never changes order status.
type Service struct {
	repo             ordertx.Runner
	registry         CourierRegistry
	policy           Policy
	dispatcher       notify.Dispatcher
	operationTimeout time.Duration
	logger           logx.Logger
	assignments      *prometheus.CounterVec
	tracking         TrackingFunc
	now              func() time.Time
	newID            func() string
}

// Option configures a Service.
type Option func(*Service)

// WithAssignmentsCounter sets a counter vec labelled by type and kind.
func WithAssignmentsCounter(c *prometheus.CounterVec) Option {
	return func(s *Service) { s.assignments = c }
}

// WithTracking replaces the tracking code generator.
func WithTracking(f TrackingFunc) Option {
	return func(s *Service) { s.tracking = f }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a delivery Service.
func NewService(
	repo ordertx.Runner,
	registry CourierRegistry,
	policy Policy,
	dispatcher notify.Dispatcher,
	timeout time.Duration,
	logger logx.Logger,
	opts ...Option,
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
	s := &Service{
		repo:             repo,
		registry:         registry,
		policy:           policy,
		dispatcher:       dispatcher,
		operationTimeout: timeout,
		logger:           logger,
		tracking:         NewTrackingCode,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// ETA returns the configured delivery time offset.
func (s *Service) ETA() time.Duration { return s.policy.ETA }

// Prepare builds the delivery block of a new order placed through channel.
// It runs inside the intake transaction so an own courier is checked against the same snapshot.
func (s *Service) Prepare(ctx context.Context, tx ordertx.Repository, channel domain.Channel, req Request) (domain.Delivery, error) {
	typ, err := s.policy.Derive(channel, req.Type)
	if err != nil {
		return domain.Delivery{}, err
	}
	req.Type = typ
	return s.resolve(ctx, tx, channel, req, domain.Delivery{})
}

// Assign sets the delivery type and assignee of an order.
// A type change recomputes the fee and the total; keeping the type keeps the fee.
func (s *Service) Assign(ctx context.Context, orderID string, req Request) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return domain.Order{}, apperr.ErrNotFound
	}
	if !req.Type.Valid() {
		return domain.Order{}, apperr.Validation(fmt.Sprintf("unknown delivery type %q", req.Type))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		updated     domain.Order
		hadAssignee bool
	)
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if req.ExpectedUpdatedAt != nil && !o.UpdatedAt.Equal(*req.ExpectedUpdatedAt) {
			return apperr.ErrConflict
		}
		if o.Status.Terminal() {
			return apperr.Validation(fmt.Sprintf("order is %s", o.Status))
		}

		d, err := s.resolve(ctx, tx, o.Channel, req, o.Delivery)
		if err != nil {
			return err
		}

		expected := o.UpdatedAt
		hadAssignee = o.Delivery.HasAssignee()
		now := s.now()

		o.Delivery = d
		o.RecomputeTotal()
		switch {
		case d.Type == domain.DeliveryPickup:
			o.EstimatedDeliveryTime = nil
		case o.EstimatedDeliveryTime == nil:
			eta := now.Add(s.policy.ETA)
			o.EstimatedDeliveryTime = &eta
		}
		o.Touch(now)

		if err := tx.UpdateOrder(ctx, o, expected); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	kind, key := notify.KindDeliveryAssigned, notify.KeyDeliveryAssigned
	if hadAssignee {
		kind, key = notify.KindDeliveryReassigned, notify.KeyDeliveryReassigned
	}
	if s.assignments != nil {
		s.assignments.WithLabelValues(string(updated.Delivery.Type), string(kind)).Inc()
	}

	s.logger.Info("delivery assigned",
		logx.String("event", string(kind)),
		logx.String("order_id", updated.ID),
		logx.String("type", string(updated.Delivery.Type)),
		logx.String("courier_id", updated.Delivery.CourierID),
		logx.String("company", string(updated.Delivery.Company)),
	)

	s.emit(ctx, notify.Event{
		ID:          s.newID(),
		Kind:        kind,
		MessageKey:  key,
		OrderID:     updated.ID,
		OrderNumber: updated.Number,
		Status:      updated.Status,
		Delivery:    updated.Delivery,
		OccurredAt:  updated.UpdatedAt,
	})
	return updated, nil
}

func (s *Service) emit(ctx context.Context, e notify.Event) {
	if err := s.dispatcher.Dispatch(ctx, e); err != nil {
		s.logger.Warn("notification not delivered",
			logx.String("order_id", e.OrderID),
			logx.String("kind", string(e.Kind)),
			logx.Err(err),
		)
	}
}

// resolve validates req against the order channel and builds the resulting delivery block.
// current is the block being replaced; its fee survives when the type does not change.
func (s *Service) resolve(
	ctx context.Context,
	tx ordertx.Repository,
	channel domain.Channel,
	req Request,
	current domain.Delivery,
) (domain.Delivery, error) {
	if req.Type == domain.DeliveryMarketplace && !channel.Marketplace() {
		return domain.Delivery{}, apperr.Validation("marketplace delivery requires a marketplace channel")
	}

	d := domain.Delivery{Type: req.Type, Notes: current.Notes}
	if req.Notes != nil {
		d.Notes = strings.TrimSpace(*req.Notes)
	}

	switch req.Type {
	case domain.DeliveryOwn:
		id := strings.TrimSpace(req.CourierID)
		if id == "" {
			return domain.Delivery{}, apperr.Validation("courierId is required for own delivery")
		}
		c, err := s.registry.ReserveAvailable(ctx, tx, id)
		if err != nil {
			return domain.Delivery{}, err
		}
		d.CourierID = c.ID
		d.Courier = c.Name
	case domain.DeliveryThirdParty:
		if req.Company == "" {
			return domain.Delivery{}, apperr.Validation("company is required for third-party delivery")
		}
		if !req.Company.Valid() {
			return domain.Delivery{}, apperr.Validation(fmt.Sprintf("unknown delivery company %q", req.Company))
		}
		d.Company = req.Company
		d.TrackingCode = strings.TrimSpace(req.TrackingCode)
		if d.TrackingCode == "" {
			d.TrackingCode = s.tracking(req.Company)
		}
	case domain.DeliveryPickup, domain.DeliveryMarketplace:
	default:
		return domain.Delivery{}, apperr.Validation(fmt.Sprintf("unknown delivery type %q", req.Type))
	}

	if current.Type == d.Type {
		d.Fee = current.Fee
		return d, nil
	}
	d.Fee = s.policy.Fee(d.Type)
	if d.Type == domain.DeliveryPickup {
		d.Fee = 0
	} else if d.Fee <= 0 {
		return domain.Delivery{}, fmt.Errorf("delivery policy: non-positive fee %s for %s", d.Fee, d.Type)
	}
	return d, nil
}
