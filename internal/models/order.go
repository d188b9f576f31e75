package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
)

// PlaceOrderRequest is the body of POST /user/orders.
type PlaceOrderRequest struct {
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=online cod"`
	DeliveryNotes string        `json:"delivery_notes" validate:"max=500"`
}

// Order is an order as echoed back by the backend.
type Order struct {
	OrderNumber       string        `json:"order_number"`
	TransactionNumber string        `json:"transaction_number,omitempty"`
	PaymentMethod     PaymentMethod `json:"payment_method,omitempty"`
	Status            string        `json:"status,omitempty"`
	DeliveryNotes     string        `json:"delivery_notes,omitempty"`
	AddressID         int64         `json:"address_id,omitempty"`
}

// GatewayOrder is what the hosted checkout widget needs to open. Amount is in
// the currency's minor unit, as the gateway expects.
type GatewayOrder struct {
	Key         string `json:"key"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OrderID     string `json:"order_id"`
}

// PlaceOrderResult is the data block of a successful order creation.
type PlaceOrderResult struct {
	TransactionNumber string        `json:"transaction_number"`
	Orders            []Order       `json:"orders"`
	Gateway           *GatewayOrder `json:"razorpay,omitempty"`
}

// FirstOrderNumber returns the order number of the first order, if any.
func (r *PlaceOrderResult) FirstOrderNumber() string {
	if r == nil || len(r.Orders) == 0 {
		return ""
	}
	return r.Orders[0].OrderNumber
}

// VerifyPaymentRequest carries the three signed fields returned by the
// gateway on success.
type VerifyPaymentRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	GatewaySignature string `json:"razorpay_signature" validate:"required"`
}

// Address is a delivery address attached to an order row.
type Address struct {
	HouseNumber  string `json:"house_number"`
	Street       string `json:"street"`
	Area         string `json:"area"`
	Landmark     string `json:"landmark,omitempty"`
	BuildingName string `json:"building_name,omitempty"`
}

// OrderSummary is a row of the current-orders and order-history lists.
type OrderSummary struct {
	ID              int64           `json:"id"`
	OrderID         string          `json:"order_id"`
	PaymentStatus   string          `json:"payment_status,omitempty"`
	OrderStatus     string          `json:"order_status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentType     string          `json:"payment_type"`
	CreatedAt       string          `json:"created_at"`
	DeliveryAddress string          `json:"delivery_address"`
	Image           string          `json:"image,omitempty"`
	Address         *Address        `json:"address,omitempty"`
}

// Order status classes used by the account views.
const (
	StatusDelivered = "delivered"
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusCancelled = "cancelled"
	StatusOther     = "other"
)

// StatusClass buckets a free-form order status.
func StatusClass(status string) string {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "delivered"), strings.Contains(s, "completed"):
		return StatusDelivered
	case strings.Contains(s, "pending"), strings.Contains(s, "processing"):
		return StatusPending
	case strings.Contains(s, "shipped"), strings.Contains(s, "transit"):
		return StatusShipped
	case strings.Contains(s, "cancel"):
		return StatusCancelled
	default:
		return StatusOther
	}
}

// Payment status classes.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentFailed  = "failed"
	PaymentUnknown = "unknown"
)

// PaymentClass buckets a free-form payment status.
func PaymentClass(status string) string {
	s := strings.ToLower(status)
	switch {
	case s == "":
		return PaymentUnknown
	case strings.Contains(s, "paid"), strings.Contains(s, "success"):
		return PaymentPaid
	case strings.Contains(s, "pending"):
		return PaymentPending
	case strings.Contains(s, "failed"), strings.Contains(s, "cancelled"):
		return PaymentFailed
	default:
		return PaymentUnknown
	}
}

// CheckoutEvent is published whenever a checkout attempt changes state.
type CheckoutEvent struct {
	Type              string        `json:"type"`
	AttemptID         string        `json:"attempt_id"`
	State             string        `json:"state"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	TransactionNumber string        `json:"transaction_number,omitempty"`
	OrderNumber       string        `json:"order_number,omitempty"`
	PaymentID         string        `json:"payment_id,omitempty"`
	Verified          bool          `json:"verified"`
	Message           string        `json:"message,omitempty"`
	OccurredAt        time.Time     `json:"occurred_at"`
}
