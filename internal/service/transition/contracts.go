//go:generate mockgen -source=contracts.go -destination=transition_mocks_test.go -package=transition_test

package transition

import (
	"context"

	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
)

// DeliveryCounter records completed deliveries on a courier.
type DeliveryCounter interface {
	IncrementDeliveryCount(ctx context.Context, tx ordertx.Repository, id string) error
}
