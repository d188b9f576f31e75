package models

import "github.com/shopspring/decimal"

// WishlistItem is one saved product.
type WishlistItem struct {
	WishlistID      int64           `json:"wishlist_id"`
	SellerProductID int64           `json:"seller_product_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	ActPrice        decimal.Decimal `json:"act_price"`
	Price           decimal.Decimal `json:"price"`
	StockQuantity   int             `json:"stock_quantity"`
	Unit            string          `json:"unit"`
	Pincode         FlexString      `json:"pincode"`
	Image           string          `json:"image"`
	IsAvailable     bool            `json:"is_available"`
}

// DiscountPercent is the rounded percentage off the act price, or zero when
// there is no discount.
func (w WishlistItem) DiscountPercent() int {
	if w.ActPrice.LessThanOrEqual(w.Price) || w.ActPrice.IsZero() {
		return 0
	}
	pct := w.ActPrice.Sub(w.Price).Div(w.ActPrice).Mul(decimal.NewFromInt(100))
	return int(pct.Round(0).IntPart())
}

// WishlistRequest is the body of POST /user/wishlist.
type WishlistRequest struct {
	SellerProductID int64 `json:"seller_product_id" validate:"required,gt=0"`
}
