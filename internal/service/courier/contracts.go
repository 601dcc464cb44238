package courier

import (
	"context"
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
)

// courierRepository defines storage operations required by the registry.
type courierRepository interface {
	GetCourier(ctx context.Context, id string) (domain.Courier, error)
	ListCouriers(ctx context.Context) ([]domain.Courier, error)
	CreateCourier(ctx context.Context, c domain.Courier) error
	ToggleAvailability(ctx context.Context, id string, now time.Time) (domain.Courier, error)
}
