package handlers

import (
	"strings"

	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/service/delivery"
	"github.com/primosamu/cannoli-dispatch/internal/service/query"
)

func orderToResponse(o domain.Order) OrderResponse {
	items := make([]ItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		dto := ItemDTO{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.Float(),
			Notes:     it.Notes,
		}
		for _, op := range it.Options {
			dto.Options = append(dto.Options, OptionDTO{Name: op.Name, Price: op.Price.Float()})
		}
		items = append(items, dto)
	}
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.Number,
		Channel:     string(o.Channel),
		Status:      string(o.Status),
		Items:       items,
		TotalAmount: o.TotalAmount.Float(),
		Delivery: DeliveryResponse{
			Type:         string(o.Delivery.Type),
			Courier:      o.Delivery.Courier,
			CourierID:    o.Delivery.CourierID,
			Company:      string(o.Delivery.Company),
			TrackingCode: o.Delivery.TrackingCode,
			Fee:          o.Delivery.Fee.Float(),
			Notes:        o.Delivery.Notes,
		},
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
		EstimatedDeliveryTime: o.EstimatedDeliveryTime,
	}
}

func ordersToResponse(list []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, orderToResponse(o))
	}
	return out
}

func groupsToResponse(g query.Groups) map[string][]OrderResponse {
	out := make(map[string][]OrderResponse, len(g))
	for status, orders := range g {
		out[string(status)] = ordersToResponse(orders)
	}
	return out
}

func boardToResponse(v query.View) BoardResponse {
	cols := make([]BoardColumn, 0, len(domain.Statuses()))
	for _, s := range domain.Statuses() {
		orders := ordersToResponse(v.Groups[s])
		cols = append(cols, BoardColumn{Status: string(s), Count: len(orders), Orders: orders})
	}
	return BoardResponse{Columns: cols}
}

func courierToResponse(c domain.Courier) CourierResponse {
	return CourierResponse{
		ID:            c.ID,
		Name:          c.Name,
		Phone:         c.Phone,
		IsAvailable:   c.IsAvailable,
		DeliveryCount: c.DeliveryCount,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func couriersToResponse(list []domain.Courier) []CourierResponse {
	out := make([]CourierResponse, 0, len(list))
	for _, c := range list {
		out = append(out, courierToResponse(c))
	}
	return out
}

func itemsFromDTO(in []ItemDTO) []domain.Item {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Item, 0, len(in))
	for _, it := range in {
		item := domain.Item{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: domain.MoneyFromFloat(it.UnitPrice),
			Notes:     it.Notes,
		}
		for _, op := range it.Options {
			item.Options = append(item.Options, domain.Option{Name: op.Name, Price: domain.MoneyFromFloat(op.Price)})
		}
		out = append(out, item)
	}
	return out
}

func (b assignDeliveryBody) toRequest() (delivery.Request, error) {
	token, err := parseToken(b.ExpectedUpdatedAt)
	if err != nil {
		return delivery.Request{}, err
	}
	return delivery.Request{
		Type:              domain.DeliveryType(strings.ToLower(strings.TrimSpace(b.Type))),
		CourierID:         b.CourierID,
		Company:           domain.DeliveryCompany(strings.ToLower(strings.TrimSpace(b.Company))),
		TrackingCode:      b.TrackingCode,
		Notes:             b.Notes,
		ExpectedUpdatedAt: token,
	}, nil
}
