package intake

import (
	"context"
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
	"github.com/primosamu/cannoli-dispatch/internal/service/delivery"
)

type deliveryPreparer interface {
	Prepare(ctx context.Context, tx ordertx.Repository, channel domain.Channel, req delivery.Request) (domain.Delivery, error)
	ETA() time.Duration
}
