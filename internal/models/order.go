package models

import "github.com/google/uuid"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPendingCourier      OrderStatus = "pending_for_courier"
	StatusPendingRestaurant   OrderStatus = "pending_for_restaurant"
	StatusConfirmedRestaurant OrderStatus = "confirmed_by_restaurant"
	StatusDelivering          OrderStatus = "delivering"
	StatusDelivered           OrderStatus = "delivered"
	StatusCancelled           OrderStatus = "cancelled"
)

// nextStatuses lists the legal forward moves for each state. Delivered and
// cancelled are sinks: an order never leaves them.
var nextStatuses = map[OrderStatus][]OrderStatus{
	StatusPendingCourier:      {StatusPendingRestaurant, StatusCancelled},
	StatusPendingRestaurant:   {StatusConfirmedRestaurant},
	StatusConfirmedRestaurant: {StatusDelivering},
	StatusDelivering:          {StatusDelivered},
	StatusDelivered:           {},
	StatusCancelled:           {},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := nextStatuses[s]
	return ok
}

// CanTransition reports whether moving from s to next is legal.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, candidate := range nextStatuses[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(nextStatuses[s]) == 0
}

// Order is the central entity of the delivery flow. Status only ever moves
// forward through nextStatuses; the store enforces at-most-once transitions.
type Order struct {
	BaseModel
	UserID            uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User              *User       `json:"user,omitempty"`
	RestaurantID      *uuid.UUID  `gorm:"type:uuid;index" json:"restaurant_id"`
	BranchID          *uuid.UUID  `gorm:"type:uuid;index" json:"branch_id"`
	CourierID         *uuid.UUID  `gorm:"type:uuid;index" json:"courier_id"`
	DeliveryAddressID *uuid.UUID  `gorm:"type:uuid" json:"delivery_address_id"`
	Status            OrderStatus `gorm:"column:order_status;index" json:"order_status"`
	Items             []OrderItem `json:"items,omitempty"`

	// TotalPrice and TotalItems are derived from the current items on every
	// read. They are never persisted.
	TotalPrice int `gorm:"-" json:"total_price"`
	TotalItems int `gorm:"-" json:"total_items"`
}

// ComputeTotals refreshes the derived totals from the loaded items.
func (o *Order) ComputeTotals() {
	o.TotalPrice = 0
	o.TotalItems = 0
	for _, item := range o.Items {
		o.TotalPrice += item.TotalPrice
		o.TotalItems += item.Quantity
	}
}

// OrderItem is a line item. Price fields are snapshots taken when the order
// was placed; items are immutable after creation.
type OrderItem struct {
	BaseModel
	OrderID      uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID    *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Quantity     int        `gorm:"default:1" json:"quantity"`
	PricePerItem int        `json:"price_per_item"`
	TotalPrice   int        `json:"total_price"`
}
