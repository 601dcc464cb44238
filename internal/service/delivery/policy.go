package delivery

import (
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
)

// DeriveFunc picks the delivery type of a new order from its channel and the operator's request.
type DeriveFunc func(channel domain.Channel, requested domain.DeliveryType) (domain.DeliveryType, error)

// FeeFunc prices a delivery type. It must return 0 for pickup and a positive amount otherwise.
type FeeFunc func(t domain.DeliveryType) domain.Money

// Policy is the default-assignment policy applied at intake and on type changes.
type Policy struct {
	Derive DeriveFunc
	Fee    FeeFunc
	ETA    time.Duration
}

// FeeSchedule holds a fixed fee per delivery type.
type FeeSchedule struct {
	Own         domain.Money
	ThirdParty  domain.Money
	Marketplace domain.Money
}

// Fee returns the scheduled fee for t.
func (f FeeSchedule) Fee(t domain.DeliveryType) domain.Money {
	switch t {
	case domain.DeliveryOwn:
		return f.Own
	case domain.DeliveryThirdParty:
		return f.ThirdParty
	case domain.DeliveryMarketplace:
		return f.Marketplace
	default:
		return 0
	}
}

// DefaultPolicy derives by channel and prices from the schedule.
func DefaultPolicy(fees FeeSchedule, eta time.Duration) Policy {
	return Policy{Derive: DeriveByChannel, Fee: fees.Fee, ETA: eta}
}

// DeriveByChannel sends marketplace channels to the marketplace; any other channel gets the
// requested type, or pickup when nothing was requested.
func DeriveByChannel(channel domain.Channel, requested domain.DeliveryType) (domain.DeliveryType, error) {
	if channel.Marketplace() {
		return domain.DeliveryMarketplace, nil
	}
	switch requested {
	case "":
		return domain.DeliveryPickup, nil
	case domain.DeliveryMarketplace:
		return "", apperr.Validation("marketplace delivery requires a marketplace channel")
	}
	if !requested.Valid() {
		return "", apperr.Validation("unknown delivery type " + string(requested))
	}
	return requested, nil
}
