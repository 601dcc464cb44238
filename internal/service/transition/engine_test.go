package transition_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/metrics"
	"github.com/primosamu/cannoli-dispatch/internal/notify"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
	"github.com/primosamu/cannoli-dispatch/internal/repository/memory"
	"github.com/primosamu/cannoli-dispatch/internal/service/courier"
	"github.com/primosamu/cannoli-dispatch/internal/service/transition"
)

var t1 = time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingDispatcher) Dispatch(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingDispatcher) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

// hookRunner runs beforeCommit after the transaction body and before the store commits it.
type hookRunner struct {
	store        *memory.Store
	beforeCommit func()
}

func (h *hookRunner) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	return h.store.WithTx(ctx, func(tx ordertx.Repository) error {
		if err := fn(tx); err != nil {
			return err
		}
		if h.beforeCommit != nil {
			hook := h.beforeCommit
			h.beforeCommit = nil
			hook()
		}
		return nil
	})
}

func seed(t *testing.T, store *memory.Store, status domain.OrderStatus, d domain.Delivery) {
	t.Helper()
	o := domain.Order{
		ID:        "o1",
		Number:    "#0042",
		Channel:   domain.ChannelMobile,
		Status:    status,
		Items:     []domain.Item{{Name: "Lasagna", Quantity: 1, UnitPrice: 3900}},
		Delivery:  d,
		CreatedAt: t1,
		UpdatedAt: t1,
	}
	o.RecomputeTotal()
	require.NoError(t, store.WithTx(context.Background(), func(tx ordertx.Repository) error {
		return tx.CreateOrder(context.Background(), o)
	}))
}

func seedCourier(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	require.NoError(t, store.CreateCourier(context.Background(), domain.Courier{
		ID: id, Name: "Ana", Phone: "+55 11 98888-0000", IsAvailable: true, CreatedAt: t1, UpdatedAt: t1,
	}))
}

func newEngine(store ordertx.Runner, counter transition.DeliveryCounter, d notify.Dispatcher) *transition.Engine {
	return transition.NewEngine(store, counter, d, nil, time.Second, nil)
}

func TestTransition_WalksTheWholeLifecycle(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seed(t, store, domain.StatusNew, domain.Delivery{Type: domain.DeliveryPickup})
	d := &recordingDispatcher{}
	counter := metrics.NewOrderTransitionsTotal()
	engine := transition.NewEngine(store, courier.NewService(store, time.Second, nil), d, counter, time.Second, nil)

	prev := t1
	for _, next := range []domain.OrderStatus{
		domain.StatusPreparing, domain.StatusReady, domain.StatusDelivering, domain.StatusCompleted,
	} {
		o, err := engine.Transition(context.Background(), "o1", next, nil)
		require.NoError(t, err)
		require.Equal(t, next, o.Status)
		require.True(t, o.UpdatedAt.After(prev), "updatedAt must grow")
		prev = o.UpdatedAt
	}

	events := d.Events()
	require.Len(t, events, 4)
	require.Equal(t, "orders.status.preparing", events[0].MessageKey)
	require.Equal(t, domain.StatusNew, events[0].PreviousStatus)
	require.Equal(t, "orders.status.completed", events[3].MessageKey)
	require.Equal(t, notify.KindStatusChanged, events[3].Kind)
	require.Equal(t, "#0042", events[3].OrderNumber)
	require.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("ready", "delivering")))
}

func TestTransition_SkippingStatusIsRejected(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seed(t, store, domain.StatusNew, domain.Delivery{Type: domain.DeliveryPickup})
	d := &recordingDispatcher{}
	engine := newEngine(store, nil, d)

	_, err := engine.Transition(context.Background(), "o1", domain.StatusReady, nil)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	var te *apperr.TransitionError
	require.True(t, errors.As(err, &te))
	require.Equal(t, "new", te.From)
	require.Equal(t, "ready", te.To)

	o, err := store.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusNew, o.Status)
	require.Equal(t, t1, o.UpdatedAt)
	require.Empty(t, d.Events())
}

func TestTransition_TerminalStatesAreFinal(t *testing.T) {
	t.Parallel()

	for _, from := range []domain.OrderStatus{domain.StatusCompleted, domain.StatusCancelled} {
		store := memory.New()
		seed(t, store, from, domain.Delivery{Type: domain.DeliveryPickup})
		engine := newEngine(store, nil, nil)

		for _, to := range domain.Statuses() {
			_, err := engine.Transition(context.Background(), "o1", to, nil)
			require.ErrorIs(t, err, apperr.ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestTransition_CancelFromAnyOpenStatus(t *testing.T) {
	t.Parallel()

	for _, from := range []domain.OrderStatus{
		domain.StatusNew, domain.StatusPreparing, domain.StatusReady, domain.StatusDelivering,
	} {
		store := memory.New()
		seed(t, store, from, domain.Delivery{Type: domain.DeliveryPickup})

		o, err := newEngine(store, nil, nil).Transition(context.Background(), "o1", domain.StatusCancelled, nil)
		require.NoError(t, err, from)
		require.Equal(t, domain.StatusCancelled, o.Status)
	}
}

func TestTransition_CompletingOwnDeliveryCreditsCourier(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seedCourier(t, store, "c1")
	seed(t, store, domain.StatusDelivering, domain.Delivery{
		Type: domain.DeliveryOwn, CourierID: "c1", Courier: "Ana", Fee: 700,
	})
	engine := newEngine(store, courier.NewService(store, time.Second, nil), nil)

	o, err := engine.Transition(context.Background(), "o1", domain.StatusCompleted, nil)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, o.Status)

	c, err := store.GetCourier(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, int64(1), c.DeliveryCount)

	_, err = engine.Transition(context.Background(), "o1", domain.StatusCompleted, nil)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	c, err = store.GetCourier(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, int64(1), c.DeliveryCount)
}

func TestTransition_CompletionOutsideOwnDeliveryDoesNotCount(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	counter := NewMockDeliveryCounter(ctrl)
	counter.EXPECT().IncrementDeliveryCount(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	store := memory.New()
	seed(t, store, domain.StatusDelivering, domain.Delivery{
		Type: domain.DeliveryThirdParty, Company: domain.CompanyLoggi, TrackingCode: "LOG-1", Fee: 1200,
	})

	_, err := newEngine(store, counter, nil).Transition(context.Background(), "o1", domain.StatusCompleted, nil)
	require.NoError(t, err)
}

func TestTransition_CounterFailureRollsBack(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	counter := NewMockDeliveryCounter(ctrl)
	counter.EXPECT().
		IncrementDeliveryCount(gomock.Any(), gomock.Any(), "c1").
		Return(errors.New("db gone"))

	store := memory.New()
	seed(t, store, domain.StatusDelivering, domain.Delivery{Type: domain.DeliveryOwn, CourierID: "c1", Fee: 700})
	d := &recordingDispatcher{}

	_, err := newEngine(store, counter, d).Transition(context.Background(), "o1", domain.StatusCompleted, nil)
	require.EqualError(t, err, "db gone")

	o, err := store.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelivering, o.Status)
	require.Empty(t, d.Events())
}

func TestTransition_StaleWriterLoses(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seed(t, store, domain.StatusNew, domain.Delivery{Type: domain.DeliveryPickup})
	runner := &hookRunner{store: store}
	slow := newEngine(runner, nil, nil)
	fast := newEngine(store, nil, nil)

	var fastErr error
	runner.beforeCommit = func() {
		_, fastErr = fast.Transition(context.Background(), "o1", domain.StatusCancelled, nil)
	}

	_, err := slow.Transition(context.Background(), "o1", domain.StatusPreparing, nil)
	require.NoError(t, fastErr)
	require.ErrorIs(t, err, apperr.ErrConflict)

	o, err := store.GetOrder(context.Background(), "o1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, o.Status)
}

func TestTransition_ExpectedUpdatedAt(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seed(t, store, domain.StatusNew, domain.Delivery{Type: domain.DeliveryPickup})
	engine := newEngine(store, nil, nil)

	first := t1
	o, err := engine.Transition(context.Background(), "o1", domain.StatusPreparing, &first)
	require.NoError(t, err)

	_, err = engine.Transition(context.Background(), "o1", domain.StatusReady, &first)
	require.ErrorIs(t, err, apperr.ErrConflict)

	_, err = engine.Transition(context.Background(), "o1", domain.StatusReady, &o.UpdatedAt)
	require.NoError(t, err)
}

func TestTransition_InputErrors(t *testing.T) {
	t.Parallel()

	store := memory.New()
	engine := newEngine(store, nil, nil)

	_, err := engine.Transition(context.Background(), "o1", "shipped", nil)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = engine.Transition(context.Background(), "missing", domain.StatusPreparing, nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = engine.Transition(context.Background(), "", domain.StatusPreparing, nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
