package handlers

import "time"

// OrderResponse is the JSON form of an order. Amounts are in currency units.
type OrderResponse struct {
	ID                    string           `json:"id"`
	OrderNumber           string           `json:"orderNumber"`
	Channel               string           `json:"channel"`
	Status                string           `json:"status"`
	Items                 []ItemDTO        `json:"items"`
	TotalAmount           float64          `json:"totalAmount"`
	Delivery              DeliveryResponse `json:"delivery"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
	EstimatedDeliveryTime *time.Time       `json:"estimatedDeliveryTime,omitempty"`
}

// ItemDTO is an order line.
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

// DeliveryResponse is the delivery block of an order.
type DeliveryResponse struct {
	Type         string  `json:"type"`
	Courier      string  `json:"courier,omitempty"`
	CourierID    string  `json:"courierId,omitempty"`
	Company      string  `json:"company,omitempty"`
	TrackingCode string  `json:"trackingCode,omitempty"`
	Fee          float64 `json:"fee"`
	Notes        string  `json:"notes,omitempty"`
}

// OrderListResponse is the reply of GET /orders.
type OrderListResponse struct {
	Orders []OrderResponse            `json:"orders"`
	Groups map[string][]OrderResponse `json:"groups"`
}

// BoardColumn is one status column of the board.
type BoardColumn struct {
	Status string          `json:"status"`
	Count  int             `json:"count"`
	Orders []OrderResponse `json:"orders"`
}

// BoardResponse is the reply of GET /orders/board; columns follow the lifecycle order.
type BoardResponse struct {
	Columns []BoardColumn `json:"columns"`
}

// CourierResponse is the JSON form of a courier.
type CourierResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	IsAvailable   bool      `json:"isAvailable"`
	DeliveryCount int64     `json:"deliveryCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type createOrderRequest struct {
	ID       string              `json:"id,omitempty"`
	Channel  string              `json:"channel"`
	Items    []ItemDTO           `json:"items"`
	Delivery *assignDeliveryBody `json:"delivery,omitempty"`
}

type changeStatusRequest struct {
	TargetStatus      string  `json:"targetStatus"`
	ExpectedUpdatedAt *string `json:"expectedUpdatedAt,omitempty"`
}

type assignDeliveryBody struct {
	Type              string  `json:"type"`
	CourierID         string  `json:"courierId,omitempty"`
	Company           string  `json:"company,omitempty"`
	TrackingCode      string  `json:"trackingCode,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	ExpectedUpdatedAt *string `json:"expectedUpdatedAt,omitempty"`
}

type createCourierRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
