package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartItem is one line of the server-owned cart snapshot.
type CartItem struct {
	CartID          int64           `json:"cart_id"`
	SellerProductID int64           `json:"seller_product_id"`
	ProductName     string          `json:"product_name"`
	Description     string          `json:"description"`
	Slug            string          `json:"slug"`
	Qty             int             `json:"qty"`
	StockQty        int             `json:"stock_qty"`
	Unit            string          `json:"unit"`
	Price           decimal.Decimal `json:"price"`
	ActPrice        decimal.Decimal `json:"act_price"`
	ItemTotal       decimal.Decimal `json:"item_total"`
	OriginalTotal   decimal.Decimal `json:"original_total"`
	Discount        decimal.Decimal `json:"discount"`
	Pincode         FlexString      `json:"pincode"`
	Image           string          `json:"image"`
	IsAvailable     bool            `json:"is_available"`
}

// CartSummary is computed by the backend on every fetch.
type CartSummary struct {
	TotalItems    int             `json:"total_items"`
	TotalQuantity int             `json:"total_quantity"`
	RawSubtotal   decimal.Decimal `json:"rawSubtotal"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	OriginalTotal decimal.Decimal `json:"original_total"`
	Discount      decimal.Decimal `json:"discount"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	HandlingFee   decimal.Decimal `json:"handling_fee"`
	Tip           decimal.Decimal `json:"tip"`
	Coupon        json.RawMessage `json:"coupon,omitempty"`
	Total         decimal.Decimal `json:"total"`
}

// GrandTotal is subtotal - discount + delivery fee + handling fee + tip.
func (s CartSummary) GrandTotal(tip decimal.Decimal) decimal.Decimal {
	return s.Subtotal.Sub(s.Discount).Add(s.DeliveryFee).Add(s.HandlingFee).Add(tip)
}

// ApplyTip recomputes the display total for a new tip. The result is never
// sent back to the backend.
func (s *CartSummary) ApplyTip(tip decimal.Decimal) {
	s.Tip = tip
	s.Total = s.GrandTotal(tip)
}

// CartData is the cart snapshot returned by GET /user/cart.
type CartData struct {
	Items                       []CartItem      `json:"items"`
	Summary                     CartSummary     `json:"summary"`
	DeliveryAddressID           int64           `json:"delivery_address_id"`
	FreeDeliveryThreshold       decimal.Decimal `json:"free_delivery_threshold"`
	CurrentAmount               decimal.Decimal `json:"current_amount"`
	AmountNeededForFreeDelivery decimal.Decimal `json:"amount_needed_for_free_delivery"`
}

// IsEmpty reports whether the cart has no lines.
func (c *CartData) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// HasUnavailable reports whether any line is flagged unavailable.
func (c *CartData) HasUnavailable() bool {
	if c == nil {
		return false
	}
	for _, item := range c.Items {
		if !item.IsAvailable {
			return true
		}
	}
	return false
}

// FreeDeliveryProgress is the subtotal as a percentage of the free delivery
// threshold, capped at 100.
func (c *CartData) FreeDeliveryProgress() float64 {
	if c == nil || !c.FreeDeliveryThreshold.IsPositive() {
		return 100
	}
	hundred := decimal.NewFromInt(100)
	p := c.Summary.Subtotal.Div(c.FreeDeliveryThreshold).Mul(hundred)
	if p.GreaterThan(hundred) {
		return 100
	}
	return p.Round(2).InexactFloat64()
}

// Clone returns a deep copy so callers can not mutate shared state.
func (c *CartData) Clone() *CartData {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = append([]CartItem(nil), c.Items...)
	if c.Summary.Coupon != nil {
		out.Summary.Coupon = append(json.RawMessage(nil), c.Summary.Coupon...)
	}
	return &out
}

// AddToCartRequest is the body of POST /user/cart.
type AddToCartRequest struct {
	SellerProductID int64 `json:"seller_product_id" validate:"required,gt=0"`
	Quantity        int   `json:"quantity" validate:"required,min=1"`
}

// UpdateQuantityRequest is the body of PUT /user/cart/items/{id}.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CouponRequest is the body of POST /user/cart/coupon.
type CouponRequest struct {
	CouponCode string `json:"coupon_code" validate:"required"`
}

// TipRequest changes the display-only tip.
type TipRequest struct {
	Tip float64 `json:"tip" validate:"gte=0"`
}
