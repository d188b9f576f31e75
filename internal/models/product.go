package models

import "github.com/shopspring/decimal"

// PageRequest is a limit/offset window over a listing.
type PageRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ProductPrice groups the three price points the backend returns for a card.
type ProductPrice struct {
	MRP       decimal.Decimal `json:"mrp"`
	SalePrice decimal.Decimal `json:"sale_price"`
	ActPrice  decimal.Decimal `json:"act_price"`
}

// ProductRating is the aggregated rating shown on a card.
type ProductRating struct {
	Average FlexString `json:"average"`
}

// Product is a product card as returned by the listing endpoints.
type Product struct {
	SellerProductID FlexString    `json:"seller_product_id"`
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	ImageURL        string        `json:"image_url,omitempty"`
	Image           string        `json:"image,omitempty"`
	Price           ProductPrice  `json:"price"`
	Rating          ProductRating `json:"rating"`
}

// Discount is MRP minus sale price, or zero when either is missing.
func (p Product) Discount() decimal.Decimal {
	if p.Price.MRP.IsZero() || p.Price.SalePrice.IsZero() {
		return decimal.Zero
	}
	return p.Price.MRP.Sub(p.Price.SalePrice)
}

// Review is a single product review.
type Review struct {
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// ProductDetail is the full product page payload.
type ProductDetail struct {
	SellerProductID FlexString      `json:"seller_product_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	ActPrice        decimal.Decimal `json:"act_price"`
	Stock           int             `json:"stock"`
	CategoryID      int64           `json:"category_id"`
	AverageRating   decimal.Decimal `json:"average_rating"`
	ReviewCount     int             `json:"review_count"`
	Images          []string        `json:"images"`
	Reviews         []Review        `json:"reviews"`
	RelatedProducts []ProductDetail `json:"related_products"`
}

// CurrentPrice is the price a customer pays for one unit.
func (p ProductDetail) CurrentPrice() decimal.Decimal {
	return p.SalePrice
}

// Category is a top-level catalog category.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	Image string `json:"image,omitempty"`
}

// Subcategory belongs to a category.
type Subcategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id,omitempty"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
}
