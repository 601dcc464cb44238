package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/metrics"
	testlog "github.com/primosamu/cannoli-dispatch/internal/testutil"
)

type listerFunc func(ctx context.Context) ([]domain.Order, error)

func (f listerFunc) ListOrders(ctx context.Context) ([]domain.Order, error) { return f(ctx) }

func TestCheck_ReportsOnlyOpenStaleOrders(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	old := now.Add(-time.Hour)
	orders := []domain.Order{
		{ID: "a", Status: domain.StatusNew, UpdatedAt: old},
		{ID: "b", Status: domain.StatusPreparing, UpdatedAt: now.Add(-10 * time.Minute)},
		{ID: "c", Status: domain.StatusDelivering, UpdatedAt: old},
		{ID: "d", Status: domain.StatusCompleted, UpdatedAt: old},
		{ID: "e", Status: domain.StatusNew, UpdatedAt: old},
	}

	gauge := metrics.NewOrdersStale()
	rec := testlog.New()
	m := NewStaleOrders(listerFunc(func(context.Context) ([]domain.Order, error) { return orders, nil }),
		45*time.Minute, time.Second, gauge, rec.Logger())
	m.now = func() time.Time { return now }

	stale, err := m.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, stale, 3)
	require.Equal(t, "a", stale[0].ID)
	require.Equal(t, "c", stale[1].ID)
	require.Equal(t, "e", stale[2].ID)

	require.Equal(t, 2.0, testutil.ToFloat64(gauge.WithLabelValues("new")))
	require.Equal(t, 0.0, testutil.ToFloat64(gauge.WithLabelValues("preparing")))
	require.Equal(t, 1.0, testutil.ToFloat64(gauge.WithLabelValues("delivering")))

	require.Equal(t, 3, rec.Count("warn"))
}

func TestCheck_ListError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	m := NewStaleOrders(listerFunc(func(context.Context) ([]domain.Order, error) { return nil, boom }),
		time.Minute, 0, nil, nil)

	_, err := m.Check(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	t.Parallel()

	m := NewStaleOrders(listerFunc(func(context.Context) ([]domain.Order, error) { return nil, nil }),
		time.Minute, 0, nil, nil)
	require.Error(t, m.Start("every once in a while"))
}

func TestStart_RunsOnSchedule(t *testing.T) {
	t.Parallel()

	calls := make(chan struct{}, 4)
	m := NewStaleOrders(listerFunc(func(context.Context) ([]domain.Order, error) {
		select {
		case calls <- struct{}{}:
		default:
		}
		return nil, nil
	}), time.Minute, 0, nil, nil)

	require.NoError(t, m.Start("@every 1s"))
	t.Cleanup(func() { m.Stop(context.Background()) })

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not run")
	}
}
