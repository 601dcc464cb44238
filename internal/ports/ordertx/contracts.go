package ordertx

import (
	"context"
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
)

// Repository is the store surface available inside a transaction.
// UpdateOrder fails with apperr.ErrConflict when the stored updatedAt differs from expectedUpdatedAt.
type Repository interface {
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	CreateOrder(ctx context.Context, o domain.Order) error
	UpdateOrder(ctx context.Context, o domain.Order, expectedUpdatedAt time.Time) error
	NextOrderNumber(ctx context.Context) (int64, error)
	GetCourier(ctx context.Context, id string) (domain.Courier, error)
	IncrementDeliveryCount(ctx context.Context, id string) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
