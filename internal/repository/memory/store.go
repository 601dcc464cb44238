// Package memory is an in-process order and courier store with the same
// transactional contract as the PostgreSQL repository.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
)

// Store keeps orders and couriers in memory. Reads return copies.
type Store struct {
	mu         sync.RWMutex
	orders     map[string]domain.Order
	orderIDs   []string
	couriers   map[string]domain.Courier
	courierIDs []string
	number     int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		orders:   make(map[string]domain.Order),
		couriers: make(map[string]domain.Courier),
	}
}

// GetOrder returns an order by its ID.
func (s *Store) GetOrder(_ context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, apperr.ErrNotFound
	}
	return o.Clone(), nil
}

// ListOrders returns all orders in intake order.
func (s *Store) ListOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		out = append(out, s.orders[id].Clone())
	}
	return out, nil
}

// GetCourier returns a courier by its ID.
func (s *Store) GetCourier(_ context.Context, id string) (domain.Courier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.couriers[id]
	if !ok {
		return domain.Courier{}, apperr.ErrNotFound
	}
	return c, nil
}

// ListCouriers returns couriers in creation order.
func (s *Store) ListCouriers(_ context.Context) ([]domain.Courier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Courier, 0, len(s.courierIDs))
	for _, id := range s.courierIDs {
		out = append(out, s.couriers[id])
	}
	return out, nil
}

// CreateCourier stores a new courier.
func (s *Store) CreateCourier(_ context.Context, c domain.Courier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.couriers[c.ID]; ok {
		return apperr.ErrConflict
	}
	s.couriers[c.ID] = c
	s.courierIDs = append(s.courierIDs, c.ID)
	return nil
}

// ToggleAvailability flips isAvailable and returns the updated courier.
func (s *Store) ToggleAvailability(_ context.Context, id string, now time.Time) (domain.Courier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.couriers[id]
	if !ok {
		return domain.Courier{}, apperr.ErrNotFound
	}
	c.IsAvailable = !c.IsAvailable
	c.UpdatedAt = now
	s.couriers[id] = c
	return c, nil
}

// WithTx stages writes made through tx and applies them atomically when fn returns nil.
// Staged order updates are re-validated against the current updatedAt at commit, and a
// courier read as available must still be available when a staged own delivery points at it.
func (s *Store) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	tx := &txRepo{
		s:          s,
		staged:     make(map[string]stagedOrder),
		increments: make(map[string]int64),
		available:  make(map[string]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *txRepo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range tx.staged {
		cur, exists := s.orders[id]
		switch {
		case st.created && exists:
			return apperr.ErrConflict
		case !st.created && !exists:
			return apperr.ErrNotFound
		case !st.created && !cur.UpdatedAt.Equal(st.expected):
			return apperr.ErrConflict
		}
	}
	for id := range tx.increments {
		if _, ok := s.couriers[id]; !ok {
			return apperr.ErrNotFound
		}
	}
	for _, st := range tx.staged {
		d := st.order.Delivery
		if d.Type != domain.DeliveryOwn || !tx.available[d.CourierID] {
			continue
		}
		// the pg store holds a row lock here; we can only refuse
		if c, ok := s.couriers[d.CourierID]; !ok || !c.IsAvailable {
			return fmt.Errorf("%w: courier %s is not available", apperr.ErrCourierUnavailable, d.CourierID)
		}
	}

	for _, id := range tx.order {
		st := tx.staged[id]
		if st.created {
			s.orderIDs = append(s.orderIDs, id)
		}
		s.orders[id] = st.order
	}
	now := time.Now().UTC()
	for id, n := range tx.increments {
		c := s.couriers[id]
		c.DeliveryCount += n
		c.UpdatedAt = now
		s.couriers[id] = c
	}
	return nil
}

func (s *Store) nextNumber() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.number++
	return s.number
}

type stagedOrder struct {
	order    domain.Order
	expected time.Time
	created  bool
}

type txRepo struct {
	s          *Store
	staged     map[string]stagedOrder
	order      []string
	increments map[string]int64
	available  map[string]bool // availability as first read inside the tx
}

var _ ordertx.Repository = (*txRepo)(nil)

func (t *txRepo) stage(id string, st stagedOrder) {
	if _, ok := t.staged[id]; !ok {
		t.order = append(t.order, id)
	}
	t.staged[id] = st
}

func (t *txRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	if st, ok := t.staged[id]; ok {
		return st.order.Clone(), nil
	}
	return t.s.GetOrder(ctx, id)
}

func (t *txRepo) CreateOrder(_ context.Context, o domain.Order) error {
	t.s.mu.RLock()
	_, exists := t.s.orders[o.ID]
	t.s.mu.RUnlock()
	if _, staged := t.staged[o.ID]; exists || staged {
		return apperr.ErrConflict
	}
	t.stage(o.ID, stagedOrder{order: o.Clone(), created: true})
	return nil
}

func (t *txRepo) UpdateOrder(ctx context.Context, o domain.Order, expectedUpdatedAt time.Time) error {
	cur, err := t.GetOrder(ctx, o.ID)
	if err != nil {
		return err
	}
	if !cur.UpdatedAt.Equal(expectedUpdatedAt) {
		return apperr.ErrConflict
	}

	st, ok := t.staged[o.ID]
	if !ok {
		st = stagedOrder{expected: expectedUpdatedAt}
	}
	st.order = o.Clone()
	t.stage(o.ID, st)
	return nil
}

func (t *txRepo) NextOrderNumber(context.Context) (int64, error) {
	return t.s.nextNumber(), nil
}

func (t *txRepo) GetCourier(ctx context.Context, id string) (domain.Courier, error) {
	c, err := t.s.GetCourier(ctx, id)
	if err != nil {
		return domain.Courier{}, err
	}
	if _, ok := t.available[id]; !ok {
		t.available[id] = c.IsAvailable
	}
	c.DeliveryCount += t.increments[id]
	return c, nil
}

func (t *txRepo) IncrementDeliveryCount(ctx context.Context, id string) error {
	if _, err := t.s.GetCourier(ctx, id); err != nil {
		return err
	}
	t.increments[id]++
	return nil
}
