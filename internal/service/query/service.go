package query

import (
	"context"
	"strings"
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
)

type orderReader interface {
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// Criteria selects orders for a projection.
type Criteria struct {
	Channels        ChannelSet
	IncludeTerminal bool
}

// View is a filtered projection together with its status buckets.
type View struct {
	Orders []domain.Order
	Groups Groups
}

// Service serves read-only projections of the order store.
type Service struct {
	repo             orderReader
	operationTimeout time.Duration
}

// NewService creates a query Service.
func NewService(r orderReader, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: r, operationTimeout: timeout}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.GetOrder(ctx, strings.TrimSpace(id))
}

// List returns the filtered orders in creation order.
func (s *Service) List(ctx context.Context, c Criteria) ([]domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	all, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, c.Channels, c.IncludeTerminal), nil
}

// Board returns the filtered orders and their status columns.
func (s *Service) Board(ctx context.Context, c Criteria) (View, error) {
	orders, err := s.List(ctx, c)
	if err != nil {
		return View{}, err
	}
	return View{Orders: orders, Groups: GroupByStatus(orders)}, nil
}
