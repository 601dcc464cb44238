package courier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/logx"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
)

// Service is the courier registry. Every courier read and write goes through it.
type Service struct {
	repo             courierRepository
	operationTimeout time.Duration
	logger           logx.Logger
	newID            func() string
	now              func() time.Time
}

// NewService creates and configures a courier Service.
func NewService(r courierRepository, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             r,
		operationTimeout: timeout,
		logger:           logger,
		newID:            func() string { return uuid.NewString() },
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// AddCourier registers an available courier with zero deliveries.
func (s *Service) AddCourier(ctx context.Context, name, phone string) (domain.Courier, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return domain.Courier{}, apperr.Validation("name is required")
	}
	if phone == "" {
		return domain.Courier{}, apperr.Validation("phone is required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	c := domain.Courier{
		ID:          s.newID(),
		Name:        name,
		Phone:       phone,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCourier(ctx, c); err != nil {
		return domain.Courier{}, err
	}

	s.logger.Info("courier added",
		logx.String("event", "courier_added"),
		logx.String("courier_id", c.ID),
	)
	return c, nil
}

// ToggleAvailability flips isAvailable. Orders already using the courier keep it.
func (s *Service) ToggleAvailability(ctx context.Context, id string) (domain.Courier, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Courier{}, apperr.ErrNotFound
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := s.repo.ToggleAvailability(ctx, id, s.now())
	if err != nil {
		return domain.Courier{}, err
	}

	s.logger.Info("courier availability changed",
		logx.String("event", "courier_availability"),
		logx.String("courier_id", c.ID),
		logx.Bool("available", c.IsAvailable),
	)
	return c, nil
}

// Get retrieves a courier by its ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Courier, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.GetCourier(ctx, strings.TrimSpace(id))
}

// List returns couriers, optionally only the available ones.
func (s *Service) List(ctx context.Context, onlyAvailable bool) ([]domain.Courier, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	all, err := s.repo.ListCouriers(ctx)
	if err != nil {
		return nil, err
	}
	if !onlyAvailable {
		return all, nil
	}
	out := make([]domain.Courier, 0, len(all))
	for _, c := range all {
		if c.IsAvailable {
			out = append(out, c)
		}
	}
	return out, nil
}

// ReserveAvailable re-reads the courier inside tx and fails with ErrCourierUnavailable
// unless it exists and is available right now.
func (s *Service) ReserveAvailable(ctx context.Context, tx ordertx.Repository, id string) (domain.Courier, error) {
	c, err := tx.GetCourier(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.Courier{}, fmt.Errorf("%w: courier %s not found", apperr.ErrCourierUnavailable, id)
	}
	if err != nil {
		return domain.Courier{}, err
	}
	if !c.IsAvailable {
		return domain.Courier{}, fmt.Errorf("%w: courier %s is not available", apperr.ErrCourierUnavailable, id)
	}
	return c, nil
}

// IncrementDeliveryCount records one completed delivery for the courier inside tx.
func (s *Service) IncrementDeliveryCount(ctx context.Context, tx ordertx.Repository, id string) error {
	if err := tx.IncrementDeliveryCount(ctx, id); err != nil {
		return fmt.Errorf("increment delivery count: %w", err)
	}
	return nil
}
