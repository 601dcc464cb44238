package courier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
	"github.com/primosamu/cannoli-dispatch/internal/repository/memory"
)

type stubCourierRepo struct {
	getFn    func(ctx context.Context, id string) (domain.Courier, error)
	listFn   func(ctx context.Context) ([]domain.Courier, error)
	createFn func(ctx context.Context, c domain.Courier) error
	toggleFn func(ctx context.Context, id string, now time.Time) (domain.Courier, error)
}

func (m *stubCourierRepo) GetCourier(ctx context.Context, id string) (domain.Courier, error) {
	return m.getFn(ctx, id)
}

func (m *stubCourierRepo) ListCouriers(ctx context.Context) ([]domain.Courier, error) {
	return m.listFn(ctx)
}

func (m *stubCourierRepo) CreateCourier(ctx context.Context, c domain.Courier) error {
	return m.createFn(ctx, c)
}

func (m *stubCourierRepo) ToggleAvailability(ctx context.Context, id string, now time.Time) (domain.Courier, error) {
	return m.toggleFn(ctx, id, now)
}

var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo courierRepository) *Service {
	s := NewService(repo, time.Second, nil)
	s.newID = func() string { return "c-1" }
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNewService_TimeoutDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, 3*time.Second, NewService(&stubCourierRepo{}, 0, nil).operationTimeout)
	require.Equal(t, 3*time.Second, NewService(&stubCourierRepo{}, -time.Second, nil).operationTimeout)
	require.Equal(t, 5*time.Second, NewService(&stubCourierRepo{}, 5*time.Second, nil).operationTimeout)
}

func TestAddCourier_Success(t *testing.T) {
	t.Parallel()

	var stored domain.Courier
	repo := &stubCourierRepo{
		createFn: func(ctx context.Context, c domain.Courier) error {
			_, ok := ctx.Deadline()
			require.True(t, ok, "expected operation timeout on ctx")
			stored = c
			return nil
		},
	}

	c, err := newTestService(repo).AddCourier(context.Background(), "  Carlos ", "+5511999990000")
	require.NoError(t, err)

	require.Equal(t, domain.Courier{
		ID:          "c-1",
		Name:        "Carlos",
		Phone:       "+5511999990000",
		IsAvailable: true,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}, c)
	require.Equal(t, c, stored)
}

func TestAddCourier_Validation(t *testing.T) {
	t.Parallel()

	repo := &stubCourierRepo{
		createFn: func(context.Context, domain.Courier) error {
			t.Fatal("repo must not be called")
			return nil
		},
	}
	s := newTestService(repo)

	cases := []struct {
		name, courierName, phone string
	}{
		{"empty name", "", "+5511999990000"},
		{"blank name", "   ", "+5511999990000"},
		{"empty phone", "Carlos", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.AddCourier(context.Background(), tc.courierName, tc.phone)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestAddCourier_RepoError(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("db down")
	repo := &stubCourierRepo{createFn: func(context.Context, domain.Courier) error { return sentinel }}

	_, err := newTestService(repo).AddCourier(context.Background(), "Carlos", "+5511999990000")
	require.ErrorIs(t, err, sentinel)
}

func TestToggleAvailability_TwiceRestores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	s := NewService(store, time.Second, nil)

	c, err := s.AddCourier(ctx, "Ana", "+5511988887777")
	require.NoError(t, err)
	require.True(t, c.IsAvailable)

	off, err := s.ToggleAvailability(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, off.IsAvailable)

	on, err := s.ToggleAvailability(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, on.IsAvailable)
}

func TestToggleAvailability_Unknown(t *testing.T) {
	t.Parallel()

	s := NewService(memory.New(), time.Second, nil)
	_, err := s.ToggleAvailability(context.Background(), "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.ToggleAvailability(context.Background(), "  ")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestList_OnlyAvailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewService(memory.New(), time.Second, nil)
	a, err := s.AddCourier(ctx, "Ana", "+5511000000001")
	require.NoError(t, err)
	b, err := s.AddCourier(ctx, "Bruno", "+5511000000002")
	require.NoError(t, err)
	_, err = s.ToggleAvailability(ctx, a.ID)
	require.NoError(t, err)

	all, err := s.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	avail, err := s.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	require.Equal(t, b.ID, avail[0].ID)
}

func TestReserveAvailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	s := NewService(store, time.Second, nil)
	c, err := s.AddCourier(ctx, "Ana", "+5511000000001")
	require.NoError(t, err)

	err = store.WithTx(ctx, func(tx ordertx.Repository) error {
		got, err := s.ReserveAvailable(ctx, tx, c.ID)
		require.NoError(t, err)
		require.Equal(t, c.ID, got.ID)

		_, err = s.ReserveAvailable(ctx, tx, "ghost")
		require.ErrorIs(t, err, apperr.ErrCourierUnavailable)
		return nil
	})
	require.NoError(t, err)

	_, err = s.ToggleAvailability(ctx, c.ID)
	require.NoError(t, err)

	err = store.WithTx(ctx, func(tx ordertx.Repository) error {
		_, err := s.ReserveAvailable(ctx, tx, c.ID)
		return err
	})
	require.ErrorIs(t, err, apperr.ErrCourierUnavailable)
}

func TestIncrementDeliveryCount_ExactlyOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	s := NewService(store, time.Second, nil)
	c, err := s.AddCourier(ctx, "Ana", "+5511000000001")
	require.NoError(t, err)

	require.NoError(t, store.WithTx(ctx, func(tx ordertx.Repository) error {
		return s.IncrementDeliveryCount(ctx, tx, c.ID)
	}))

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.DeliveryCount)
}
