package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
)

var t0 = time.Date(2025, 5, 10, 18, 30, 0, 0, time.UTC)

func seed(t *testing.T, s *Store, ids ...string) {
	t.Helper()
	err := s.WithTx(context.Background(), func(tx ordertx.Repository) error {
		for _, id := range ids {
			if err := tx.CreateOrder(context.Background(), domain.Order{
				ID: id, Number: "#" + id, Channel: domain.ChannelApp, Status: domain.StatusNew,
				CreatedAt: t0, UpdatedAt: t0,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func TestStore_ListPreservesIntakeOrder(t *testing.T) {
	t.Parallel()

	s := New()
	seed(t, s, "b", "a", "c")

	list, err := s.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "b", list[0].ID)
	require.Equal(t, "a", list[1].ID)
	require.Equal(t, "c", list[2].ID)
}

func TestStore_UpdateOrder_StaleIsConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seed(t, s, "o1")

	first, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	second := first.Clone()

	first.Status = domain.StatusPreparing
	first.Touch(t0.Add(time.Second))
	require.NoError(t, s.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.UpdateOrder(ctx, first, t0)
	}))

	second.Status = domain.StatusCancelled
	second.Touch(t0.Add(2 * time.Second))
	err = s.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.UpdateOrder(ctx, second, t0)
	})
	require.ErrorIs(t, err, apperr.ErrConflict)

	got, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPreparing, got.Status)
}

func TestStore_CommitRecheck_DetectsInterleavedWriter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seed(t, s, "o1")

	err := s.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrder(ctx, "o1")
		require.NoError(t, err)
		o.Status = domain.StatusPreparing
		o.Touch(t0.Add(time.Second))
		require.NoError(t, tx.UpdateOrder(ctx, o, t0))

		// another writer commits before this transaction does
		other := o.Clone()
		other.Status = domain.StatusCancelled
		require.NoError(t, s.WithTx(ctx, func(tx2 ordertx.Repository) error {
			return tx2.UpdateOrder(ctx, other, t0)
		}))
		return nil
	})
	require.ErrorIs(t, err, apperr.ErrConflict)

	got, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, got.Status)
}

func TestStore_RollbackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seed(t, s, "o1")
	require.NoError(t, s.CreateCourier(ctx, domain.Courier{ID: "c1", Name: "Ana", Phone: "+5511999990000", IsAvailable: true}))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx ordertx.Repository) error {
		o, _ := tx.GetOrder(ctx, "o1")
		o.Status = domain.StatusCompleted
		o.Touch(t0.Add(time.Second))
		require.NoError(t, tx.UpdateOrder(ctx, o, t0))
		require.NoError(t, tx.IncrementDeliveryCount(ctx, "c1"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	o, _ := s.GetOrder(ctx, "o1")
	require.Equal(t, domain.StatusNew, o.Status)
	c, _ := s.GetCourier(ctx, "c1")
	require.Zero(t, c.DeliveryCount)
}

func TestStore_IncrementAppliedWithCommit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateCourier(ctx, domain.Courier{ID: "c1", IsAvailable: true}))

	require.NoError(t, s.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.IncrementDeliveryCount(ctx, "c1")
	}))
	c, err := s.GetCourier(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, int64(1), c.DeliveryCount)

	err = s.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.IncrementDeliveryCount(ctx, "missing")
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_ToggleAvailability(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateCourier(ctx, domain.Courier{ID: "c1", IsAvailable: true}))
	require.ErrorIs(t, s.CreateCourier(ctx, domain.Courier{ID: "c1"}), apperr.ErrConflict)

	c, err := s.ToggleAvailability(ctx, "c1", t0)
	require.NoError(t, err)
	require.False(t, c.IsAvailable)

	_, err = s.ToggleAvailability(ctx, "nope", t0)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_ReadsAreCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	require.NoError(t, s.WithTx(ctx, func(tx ordertx.Repository) error {
		return tx.CreateOrder(ctx, domain.Order{ID: "o1", Items: []domain.Item{{Name: "Pizza", Quantity: 1}}, UpdatedAt: t0})
	}))

	o, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	o.Items[0].Name = "changed"

	again, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, "Pizza", again.Items[0].Name)
}

func TestStore_CommitRecheck_CourierWentUnavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seed(t, s, "o1")
	require.NoError(t, s.CreateCourier(ctx, domain.Courier{ID: "c1", Name: "Ana", IsAvailable: true}))

	err := s.WithTx(ctx, func(tx ordertx.Repository) error {
		c, err := tx.GetCourier(ctx, "c1")
		require.NoError(t, err)
		require.True(t, c.IsAvailable)

		o, err := tx.GetOrder(ctx, "o1")
		require.NoError(t, err)
		o.Delivery = domain.Delivery{Type: domain.DeliveryOwn, Courier: c.Name, CourierID: c.ID, Fee: 700}
		o.Touch(t0.Add(time.Second))
		require.NoError(t, tx.UpdateOrder(ctx, o, t0))

		// курьер ушёл с линии до коммита
		_, err = s.ToggleAvailability(ctx, "c1", t0.Add(time.Second))
		require.NoError(t, err)
		return nil
	})
	require.ErrorIs(t, err, apperr.ErrCourierUnavailable)

	got, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, domain.Delivery{}, got.Delivery)
}

func TestStore_CommitRecheck_UnrelatedCourierReadIsIgnored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()
	seed(t, s, "o1")
	require.NoError(t, s.CreateCourier(ctx, domain.Courier{ID: "c1", IsAvailable: true}))

	require.NoError(t, s.WithTx(ctx, func(tx ordertx.Repository) error {
		if _, err := tx.GetCourier(ctx, "c1"); err != nil {
			return err
		}
		o, err := tx.GetOrder(ctx, "o1")
		if err != nil {
			return err
		}
		o.Status = domain.StatusPreparing
		o.Touch(t0.Add(time.Second))
		if err := tx.UpdateOrder(ctx, o, t0); err != nil {
			return err
		}
		_, err = s.ToggleAvailability(ctx, "c1", t0.Add(time.Second))
		return err
	}))
}
