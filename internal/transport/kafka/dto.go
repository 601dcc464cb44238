package kafka

import (
	"strings"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/service/delivery"
	"github.com/primosamu/cannoli-dispatch/internal/service/intake"
)

// IntakeDTO is an order published by a sales channel on the intake topic.
type IntakeDTO struct {
	ID       string       `json:"id"`
	Channel  string       `json:"channel"`
	Items    []ItemDTO    `json:"items"`
	Delivery *DeliveryDTO `json:"delivery,omitempty"`
}

// ItemDTO is an order line; prices are decimal currency units.
type ItemDTO struct {
	Name      string      `json:"name"`
	Quantity  int         `json:"quantity"`
	UnitPrice float64     `json:"unitPrice"`
	Notes     string      `json:"notes,omitempty"`
	Options   []OptionDTO `json:"options,omitempty"`
}

// OptionDTO is a priced add-on.
type OptionDTO struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// DeliveryDTO is the delivery the channel asked for.
type DeliveryDTO struct {
	Type         string `json:"type"`
	CourierID    string `json:"courierId,omitempty"`
	Company      string `json:"company,omitempty"`
	TrackingCode string `json:"trackingCode,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// ToDomain converts IntakeDTO to intake.NewOrder
func ToDomain(dto IntakeDTO) intake.NewOrder {
	out := intake.NewOrder{
		ID:      strings.TrimSpace(dto.ID),
		Channel: domain.Channel(strings.ToLower(strings.TrimSpace(dto.Channel))),
	}
	if len(dto.Items) > 0 {
		out.Items = make([]domain.Item, 0, len(dto.Items))
	}
	for _, it := range dto.Items {
		item := domain.Item{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: domain.MoneyFromFloat(it.UnitPrice),
			Notes:     it.Notes,
		}
		for _, op := range it.Options {
			item.Options = append(item.Options, domain.Option{Name: op.Name, Price: domain.MoneyFromFloat(op.Price)})
		}
		out.Items = append(out.Items, item)
	}
	if d := dto.Delivery; d != nil {
		out.Delivery = delivery.Request{
			Type:         domain.DeliveryType(strings.ToLower(strings.TrimSpace(d.Type))),
			CourierID:    d.CourierID,
			Company:      domain.DeliveryCompany(strings.ToLower(strings.TrimSpace(d.Company))),
			TrackingCode: d.TrackingCode,
		}
		if notes := strings.TrimSpace(d.Notes); notes != "" {
			out.Delivery.Notes = &notes
		}
	}
	return out
}
