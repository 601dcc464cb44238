package domain

// OrderStatus is a step of the order lifecycle.
type OrderStatus string

// Order lifecycle statuses.
const (
	StatusNew        OrderStatus = "new"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// allowedStatuses is also the board column order.
var allowedStatuses = [...]OrderStatus{
	StatusNew, StatusPreparing, StatusReady, StatusDelivering, StatusCompleted, StatusCancelled,
}

// forward edges; cancelled is handled separately
var nextStatus = map[OrderStatus]OrderStatus{
	StatusNew:        StatusPreparing,
	StatusPreparing:  StatusReady,
	StatusReady:      StatusDelivering,
	StatusDelivering: StatusCompleted,
}

// Statuses returns all statuses in board column order.
func Statuses() []OrderStatus {
	out := make([]OrderStatus, len(allowedStatuses))
	copy(out, allowedStatuses[:])
	return out
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return nextStatus[from] == to
}
