package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment statuses.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// OrderAddress is the address snapshot embedded into an order. Orders copy
// addresses at checkout so later edits to the user's address book never
// change a placed order.
type OrderAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Complete reports whether every required address field is present.
func (a OrderAddress) Complete() bool {
	return a.Name != "" && a.Phone != "" && a.Address != "" &&
		a.City != "" && a.State != "" && a.Pincode != ""
}

type Order struct {
	BaseModel
	UserID                uuid.UUID    `gorm:"type:uuid;index" json:"user_id"`
	User                  *User        `json:"user,omitempty"`
	OrderNumber           string       `gorm:"uniqueIndex" json:"order_number"`
	Items                 []OrderItem  `json:"items,omitempty"`
	ShippingAddress       OrderAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress        OrderAddress `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`
	Subtotal              float64      `json:"subtotal"`
	Tax                   float64      `json:"tax"`
	Shipping              float64      `json:"shipping"`
	Total                 float64      `json:"total"`
	PaymentMethod         string       `json:"payment_method"`
	PaymentStatus         string       `gorm:"default:pending" json:"payment_status"`
	OrderStatus           string       `gorm:"default:pending;index" json:"order_status"`
	StripePaymentIntentID string       `gorm:"index" json:"stripe_payment_intent_id,omitempty"`
	TrackingNumber        string       `json:"tracking_number"`
	EstimatedDelivery     *time.Time   `json:"estimated_delivery"`
	Notes                 []OrderNote  `json:"notes,omitempty"`
	CancellationReason    string       `json:"cancellation_reason"`
	CancelledAt           *time.Time   `json:"cancelled_at"`
	RefundAmount          float64      `json:"refund_amount"`
	RefundedAt            *time.Time   `json:"refunded_at"`
	PlacedAt              time.Time    `json:"placed_at"`
}

// OrderItem snapshots one purchased line. Price and name are copied from the
// product at checkout and never recomputed afterwards.
type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID     *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Product       *Product   `json:"product,omitempty"`
	ProductName   string     `json:"product_name"`
	Quantity      int        `json:"quantity"`
	Price         float64    `json:"price"`
	LineTotal     float64    `json:"line_total"`
	SelectedSize  string     `json:"selected_size"`
	SelectedColor string     `json:"selected_color"`
}

// OrderNote is one entry of an order's append-only note log.
type OrderNote struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	Note    string    `json:"note"`
}

// OrderCounter holds the per-day order number sequence. One row per calendar
// day, incremented atomically inside the order-creation transaction.
type OrderCounter struct {
	BaseModel
	Day string `gorm:"uniqueIndex" json:"day"`
	Seq int    `json:"seq"`
}
