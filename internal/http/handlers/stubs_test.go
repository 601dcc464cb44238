package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/service/delivery"
	"github.com/primosamu/cannoli-dispatch/internal/service/intake"
	"github.com/primosamu/cannoli-dispatch/internal/service/query"
)

type stubQueries struct {
	getFn   func(ctx context.Context, id string) (domain.Order, error)
	listFn  func(ctx context.Context, c query.Criteria) ([]domain.Order, error)
	boardFn func(ctx context.Context, c query.Criteria) (query.View, error)
}

func (s *stubQueries) Get(ctx context.Context, id string) (domain.Order, error) {
	return s.getFn(ctx, id)
}

func (s *stubQueries) List(ctx context.Context, c query.Criteria) ([]domain.Order, error) {
	return s.listFn(ctx, c)
}

func (s *stubQueries) Board(ctx context.Context, c query.Criteria) (query.View, error) {
	return s.boardFn(ctx, c)
}

type stubStatuses struct {
	fn func(ctx context.Context, id string, target domain.OrderStatus, token *time.Time) (domain.Order, error)
}

func (s *stubStatuses) Transition(ctx context.Context, id string, target domain.OrderStatus, token *time.Time) (domain.Order, error) {
	return s.fn(ctx, id, target, token)
}

type stubAssigner struct {
	fn func(ctx context.Context, id string, req delivery.Request) (domain.Order, error)
}

func (s *stubAssigner) Assign(ctx context.Context, id string, req delivery.Request) (domain.Order, error) {
	return s.fn(ctx, id, req)
}

type stubIntaker struct {
	fn func(ctx context.Context, in intake.NewOrder) (domain.Order, error)
}

func (s *stubIntaker) Intake(ctx context.Context, in intake.NewOrder) (domain.Order, error) {
	return s.fn(ctx, in)
}

type stubRegistry struct {
	addFn    func(ctx context.Context, name, phone string) (domain.Courier, error)
	toggleFn func(ctx context.Context, id string) (domain.Courier, error)
	getFn    func(ctx context.Context, id string) (domain.Courier, error)
	listFn   func(ctx context.Context, onlyAvailable bool) ([]domain.Courier, error)
}

func (s *stubRegistry) AddCourier(ctx context.Context, name, phone string) (domain.Courier, error) {
	return s.addFn(ctx, name, phone)
}

func (s *stubRegistry) ToggleAvailability(ctx context.Context, id string) (domain.Courier, error) {
	return s.toggleFn(ctx, id)
}

func (s *stubRegistry) Get(ctx context.Context, id string) (domain.Courier, error) {
	return s.getFn(ctx, id)
}

func (s *stubRegistry) List(ctx context.Context, onlyAvailable bool) ([]domain.Courier, error) {
	return s.listFn(ctx, onlyAvailable)
}

// newRequest builds a request with chi URL params already resolved.
func newRequest(method, target, body string, params map[string]string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

var (
	ts0 = time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	ts1 = ts0.Add(90 * time.Second)
)

func sampleOrder() domain.Order {
	eta := ts1.Add(45 * time.Minute)
	return domain.Order{
		ID:      "o1",
		Number:  "#0042",
		Channel: domain.ChannelMobile,
		Status:  domain.StatusPreparing,
		Items: []domain.Item{{
			Name: "Margherita", Quantity: 2, UnitPrice: 3290,
			Options: []domain.Option{{Name: "Extra cheese", Price: 450}},
		}},
		TotalAmount:           8180,
		Delivery:              domain.Delivery{Type: domain.DeliveryOwn, CourierID: "c1", Courier: "Ana", Fee: 700},
		CreatedAt:             ts0,
		UpdatedAt:             ts1,
		EstimatedDeliveryTime: &eta,
	}
}
