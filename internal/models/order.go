package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus is the closed set of payment states an order can be in.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentSuccessful    PaymentStatus = "successful"
	PaymentFailed        PaymentStatus = "failed"
	PaymentRefundStarted PaymentStatus = "refund_started"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentRefundFailed  PaymentStatus = "refund_failed"
)

// Valid reports whether s is a member of the closed payment status set.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentSuccessful, PaymentFailed,
		PaymentRefundStarted, PaymentRefunded, PaymentRefundFailed:
		return true
	}
	return false
}

// OrderStatus is the closed set of fulfilment states an order can be in.
type OrderStatus string

const (
	OrderCreated    OrderStatus = "created"
	OrderReceived   OrderStatus = "received"
	OrderDispatched OrderStatus = "dispatched"
	OrderDelivered  OrderStatus = "delivered"
	OrderRejected   OrderStatus = "rejected"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a member of the closed order status set.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderCreated, OrderReceived, OrderDispatched,
		OrderDelivered, OrderRejected, OrderCancelled:
		return true
	}
	return false
}

// Address is the shipping address attached to an order.
type Address struct {
	Line1    string `json:"line1" validate:"required"`
	Line2    string `json:"line2" validate:"omitempty"`
	Landmark string `json:"landmark" validate:"omitempty"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Zip      string `json:"zip" validate:"required"`
	Country  string `json:"country" validate:"required"`
	Street   string `json:"street" validate:"required"`
}

// TransactionIDSentinel is the placeholder transaction id an order carries
// until the external charge is confirmed.
const TransactionIDSentinel = "null"

// Order is the immutable record of a checked-out cart. TotalPrice is in
// minor currency units and equals the sum of price x quantity over the
// source cart's items at creation time. Orders are created once and only
// mutated by the checkout and cancellation coordinators.
type Order struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string        `json:"user_id" gorm:"type:varchar(36);index"`
	Address       Address       `json:"address" gorm:"embedded;embeddedPrefix:address_"`
	Tel           string        `json:"tel"`
	CartID        string        `json:"cart_id" gorm:"type:varchar(36)"`
	TotalPrice    int64         `json:"total_price"`
	TransactionID string        `json:"transaction_id"`
	ReceiptURL    string        `json:"receipt_url"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(20)"`
	OrderStatus   OrderStatus   `json:"order_status" gorm:"type:varchar(20)"`
	OrderedAt     time.Time     `json:"ordered_at"`
	gorm.Model                  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
