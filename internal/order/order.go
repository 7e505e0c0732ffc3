// Package order describes orders and payments as kept in the relational store.
// The relay never reads these; both sides only share the order id space.
package order

import (
	"context"
	"time"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCOD      PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodRazorpay || m == PaymentMethodCOD
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Order struct {
	Id              string        `json:"id"`
	CustomerId      string        `json:"customer_id"`
	ShopId          string        `json:"shop_id"`
	DeliveryId      *string       `json:"delivery_id,omitempty"`
	DeliveryAddress string        `json:"delivery_address"`
	DeliveryLat     *float64      `json:"delivery_lat,omitempty"`
	DeliveryLng     *float64      `json:"delivery_lng,omitempty"`
	Status          Status        `json:"status"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	TransactionId   *string       `json:"transaction_id,omitempty"`
	TotalAmount     float64       `json:"total_amount"`
	Items           []Item        `json:"items"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type Item struct {
	Id          string    `json:"id"`
	OrderId     string    `json:"order_id"`
	ProductId   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewOrder struct {
	CustomerId      string
	ShopId          string
	DeliveryAddress string
	DeliveryLat     *float64
	DeliveryLng     *float64
	PaymentMethod   PaymentMethod
	TotalAmount     float64
	Items           []NewItem
}

type NewItem struct {
	ProductId   string
	ProductName string
	Quantity    int
	Price       float64
}

// Filter narrows List; empty fields do not filter.
type Filter struct {
	CustomerId string
	DeliveryId string
}

type PaymentConfirmation struct {
	OrderId          string
	GatewayOrderId   string
	GatewayPaymentId string
}

type Store interface {
	// Create stores the order with status pending together with its items
	// and a pending payment record.
	Create(ctx context.Context, order NewOrder) (Order, error)

	// List returns matching orders, newest first, with their items.
	List(ctx context.Context, filter Filter) ([]Order, error)

	Get(ctx context.Context, orderId string) (Order, error)

	UpdateStatus(ctx context.Context, orderId string, status Status) (Order, error)

	// ConfirmPayment marks the order's payment completed and the order
	// confirmed, recording the gateway payment id as transaction id.
	ConfirmPayment(ctx context.Context, confirmation PaymentConfirmation) error
}
