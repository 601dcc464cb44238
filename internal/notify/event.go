package notify

import (
	"time"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
)

// Kind classifies an event.
type Kind string

// List of event kinds
const (
	KindOrderCreated       Kind = "order.created"
	KindStatusChanged      Kind = "order.status_changed"
	KindDeliveryAssigned   Kind = "delivery.assigned"
	KindDeliveryReassigned Kind = "delivery.reassigned"
)

// Message keys resolved by the presentation layer.
const (
	KeyOrderCreated       = "orders.created"
	KeyDeliveryAssigned   = "orders.delivery.assigned"
	KeyDeliveryReassigned = "orders.delivery.reassigned"
)

// Event is a user-relevant mutation of an order.
type Event struct {
	ID             string
	Kind           Kind
	MessageKey     string
	OrderID        string
	OrderNumber    string
	Status         domain.OrderStatus
	PreviousStatus domain.OrderStatus
	Delivery       domain.Delivery
	OccurredAt     time.Time
}

// StatusMessageKey returns the message key announcing that an order entered status.
func StatusMessageKey(status domain.OrderStatus) string {
	return "orders.status." + string(status)
}
