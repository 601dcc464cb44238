package domain

import "time"

// Courier is an internal delivery resource.
type Courier struct {
	ID            string
	Name          string
	Phone         string
	IsAvailable   bool
	DeliveryCount int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
