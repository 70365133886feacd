package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle status of an order as reported by the API
type OrderStatus string

// OrderStatus values, in flow order
const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAccepted        OrderStatus = "accepted"
	OrderStatusPreparing       OrderStatus = "preparing"
	OrderStatusReadyForPickup  OrderStatus = "ready_for_pickup"
	OrderStatusAssignedToRider OrderStatus = "assigned_to_rider"
	OrderStatusPickedUp        OrderStatus = "picked_up"
	OrderStatusOnTheWay        OrderStatus = "on_the_way"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// AllOrderStatuses lists every known status in flow order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusReadyForPickup,
	OrderStatusAssignedToRider,
	OrderStatusPickedUp,
	OrderStatusOnTheWay,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the known statuses
func (s OrderStatus) Valid() bool {
	for _, known := range AllOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Payment methods and statuses reported by the API
const (
	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodOnline = "online"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// StatusHistoryEntry is one append-only record of a past status
type StatusHistoryEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

// OrderItem represents a menu item line in an order
type OrderItem struct {
	MenuItem string          `json:"menuItem"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Notes    string          `json:"specialInstructions,omitempty"`
}

// Customer is the ordering user embedded in an order
type Customer struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Address is a delivery address
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// Order is a read-only snapshot of a backend order
type Order struct {
	ID                    string               `json:"_id"`
	Status                OrderStatus          `json:"status"`
	StatusHistory         []StatusHistoryEntry `json:"statusHistory"`
	Items                 []OrderItem          `json:"items"`
	User                  *Customer            `json:"user,omitempty"`
	DeliveryAddress       *Address             `json:"deliveryAddress,omitempty"`
	Subtotal              decimal.Decimal      `json:"subtotal"`
	DeliveryFee           decimal.Decimal      `json:"deliveryFee"`
	TaxAmount             decimal.Decimal      `json:"taxAmount"`
	Discount              decimal.Decimal      `json:"discount"`
	Total                 decimal.Decimal      `json:"total"`
	PaymentMethod         string               `json:"paymentMethod"`
	PaymentStatus         string               `json:"paymentStatus"`
	CancellationReason    string               `json:"cancellationReason,omitempty"`
	CancelledBy           string               `json:"cancelledBy,omitempty"`
	EstimatedDeliveryTime *time.Time           `json:"estimatedDeliveryTime,omitempty"`
	ActualDeliveryTime    *time.Time           `json:"actualDeliveryTime,omitempty"`
	CreatedAt             time.Time            `json:"createdAt"`
}

// PaidOnline reports whether a cancellation would trigger a backend refund
// attempt. Any cash variant, such as cash_on_delivery, is not online.
func (o *Order) PaidOnline() bool {
	method := strings.ToLower(o.PaymentMethod)
	return method != "" && !strings.HasPrefix(method, PaymentMethodCash)
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.StatusHistory = append([]StatusHistoryEntry(nil), o.StatusHistory...)
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.User != nil {
		u := *o.User
		c.User = &u
	}
	if o.DeliveryAddress != nil {
		a := *o.DeliveryAddress
		c.DeliveryAddress = &a
	}
	return &c
}

// UpdateStatusRequest is the body of a status change call
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Note   string      `json:"note,omitempty"`
}

// OrderFilter holds the server-side and client-side order list filters
type OrderFilter struct {
	Status     OrderStatus `form:"status"`
	StartDate  time.Time   `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate    time.Time   `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00"`
	SearchTerm string      `form:"search"`
}
