package handlers

import (
	"context"
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/service/delivery"
	"github.com/primosamu/cannoli-dispatch/internal/service/intake"
	"github.com/primosamu/cannoli-dispatch/internal/service/query"
)

type orderQueries interface {
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, c query.Criteria) ([]domain.Order, error)
	Board(ctx context.Context, c query.Criteria) (query.View, error)
}

type statusChanger interface {
	Transition(ctx context.Context, orderID string, target domain.OrderStatus, expectedUpdatedAt *time.Time) (domain.Order, error)
}

type deliveryAssigner interface {
	Assign(ctx context.Context, orderID string, req delivery.Request) (domain.Order, error)
}

type orderIntaker interface {
	Intake(ctx context.Context, in intake.NewOrder) (domain.Order, error)
}

type courierRegistry interface {
	AddCourier(ctx context.Context, name, phone string) (domain.Courier, error)
	ToggleAvailability(ctx context.Context, id string) (domain.Courier, error)
	Get(ctx context.Context, id string) (domain.Courier, error)
	List(ctx context.Context, onlyAvailable bool) ([]domain.Courier, error)
}
