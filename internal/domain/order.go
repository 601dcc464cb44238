package domain

import "time"

// Order is a customer purchase moving through fulfillment.
type Order struct {
	ID                    string
	Number                string
	Channel               Channel
	Status                OrderStatus
	Items                 []Item
	TotalAmount           Money
	Delivery              Delivery
	CreatedAt             time.Time
	UpdatedAt             time.Time
	EstimatedDeliveryTime *time.Time
}

// Item is a single order line.
type Item struct {
	Name      string
	Quantity  int
	UnitPrice Money
	Notes     string
	Options   []Option
}

// Option is a priced add-on charged once per item unit.
type Option struct {
	Name  string
	Price Money
}

// Delivery describes how the order is fulfilled.
type Delivery struct {
	Type         DeliveryType
	Courier      string
	CourierID    string
	Company      DeliveryCompany
	TrackingCode string
	Fee          Money
	Notes        string
}

// Subtotal returns the item price including add-ons, times quantity.
func (i Item) Subtotal() Money {
	unit := i.UnitPrice
	for _, opt := range i.Options {
		unit += opt.Price
	}
	return unit.Mul(i.Quantity)
}

// ItemsSubtotal sums the subtotals of all items.
func ItemsSubtotal(items []Item) Money {
	var sum Money
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}

// RecomputeTotal sets TotalAmount from the items and the delivery fee.
func (o *Order) RecomputeTotal() {
	o.TotalAmount = ItemsSubtotal(o.Items) + o.Delivery.Fee
}

// Touch advances UpdatedAt to now, keeping it strictly increasing at microsecond precision.
func (o *Order) Touch(now time.Time) {
	next := now.UTC().Truncate(time.Microsecond)
	if floor := o.UpdatedAt.Add(time.Microsecond); next.Before(floor) {
		next = floor
	}
	o.UpdatedAt = next
}

// HasAssignee reports whether a courier or a company is bound to the delivery.
func (d Delivery) HasAssignee() bool {
	return d.CourierID != "" || d.Company != ""
}

// Clone returns a deep copy safe to mutate.
func (o Order) Clone() Order {
	cp := o
	if o.Items != nil {
		cp.Items = make([]Item, len(o.Items))
		for i, it := range o.Items {
			cp.Items[i] = it
			if it.Options != nil {
				cp.Items[i].Options = append([]Option(nil), it.Options...)
			}
		}
	}
	if o.EstimatedDeliveryTime != nil {
		eta := *o.EstimatedDeliveryTime
		cp.EstimatedDeliveryTime = &eta
	}
	return cp
}
