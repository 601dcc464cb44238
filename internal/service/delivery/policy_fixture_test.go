package delivery_test

import (
	"math/rand"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/service/delivery"
)

// randomFees prices own deliveries in [5, 10] and third-party ones in [8, 15], whole units.
func randomFees(rng *rand.Rand) delivery.FeeFunc {
	return func(t domain.DeliveryType) domain.Money {
		switch t {
		case domain.DeliveryOwn:
			return domain.Money(500 + rng.Intn(6)*100)
		case domain.DeliveryThirdParty:
			return domain.Money(800 + rng.Intn(8)*100)
		case domain.DeliveryMarketplace:
			return 699
		default:
			return 0
		}
	}
}
