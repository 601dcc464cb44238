//go:generate mockgen -source=contracts.go -destination=delivery_mocks_test.go -package=delivery_test

package delivery

import (
	"context"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
)

// CourierRegistry is the registry surface used while assigning.
type CourierRegistry interface {
	ReserveAvailable(ctx context.Context, tx ordertx.Repository, id string) (domain.Courier, error)
}
