package notify

import (
	"encoding/json"
	"time"
)

// message is the wire shape shared by all broker sinks.
type message struct {
	ID             string           `json:"id"`
	Kind           Kind             `json:"kind"`
	MessageKey     string           `json:"message_key"`
	OrderID        string           `json:"order_id"`
	OrderNumber    string           `json:"order_number"`
	Status         string           `json:"status"`
	PreviousStatus string           `json:"previous_status,omitempty"`
	Delivery       *deliveryMessage `json:"delivery,omitempty"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

type deliveryMessage struct {
	Type         string  `json:"type"`
	Courier      string  `json:"courier,omitempty"`
	CourierID    string  `json:"courier_id,omitempty"`
	Company      string  `json:"company,omitempty"`
	TrackingCode string  `json:"tracking_code,omitempty"`
	Fee          float64 `json:"fee"`
}

func encode(e Event) ([]byte, error) {
	m := message{
		ID:             e.ID,
		Kind:           e.Kind,
		MessageKey:     e.MessageKey,
		OrderID:        e.OrderID,
		OrderNumber:    e.OrderNumber,
		Status:         string(e.Status),
		PreviousStatus: string(e.PreviousStatus),
		OccurredAt:     e.OccurredAt,
	}
	if e.Delivery.Type != "" {
		m.Delivery = &deliveryMessage{
			Type:         string(e.Delivery.Type),
			Courier:      e.Delivery.Courier,
			CourierID:    e.Delivery.CourierID,
			Company:      string(e.Delivery.Company),
			TrackingCode: e.Delivery.TrackingCode,
			Fee:          e.Delivery.Fee.Float(),
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, Permanent(err)
	}
	return b, nil
}
