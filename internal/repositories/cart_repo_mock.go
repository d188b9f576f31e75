package repositories

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"

	"github.com/shopspring/decimal"
)

// Pricing rules of the in-memory backend.
var (
	MockFreeDeliveryThreshold = decimal.NewFromInt(199)
	MockDeliveryFee           = decimal.NewFromInt(25)
	MockHandlingFee           = decimal.NewFromInt(5)
)

// MockCoupons maps coupon codes to a percentage off the subtotal.
var MockCoupons = map[string]int64{
	"SAVE10":  10,
	"WELCOME": 20,
}

type mockCart struct {
	items  []models.CartItem
	coupon string
}

// MockCartRepository is an in-memory implementation of CartRepository that
// computes the cart summary the way the backend does.
type MockCartRepository struct {
	catalog *MockCatalogRepository
	carts   map[string]*mockCart
	nextID  int64
	mu      sync.Mutex

	// ClearUnsupported makes Clear answer 404 like backends without the
	// clear-all endpoint.
	ClearUnsupported bool
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository(catalog *MockCatalogRepository) *MockCartRepository {
	return &MockCartRepository{
		catalog: catalog,
		carts:   make(map[string]*mockCart),
	}
}

func unauthorized(method, path string) error {
	return &restclient.HTTPError{Method: method, Path: path, StatusCode: http.StatusUnauthorized, Message: "Unauthorized"}
}

func (r *MockCartRepository) cart(token string) *mockCart {
	c, ok := r.carts[token]
	if !ok {
		c = &mockCart{}
		r.carts[token] = c
	}
	return c
}

// Get returns the cart snapshot.
func (r *MockCartRepository) Get(_ context.Context, sess models.Session) (*models.CartData, error) {
	if !sess.LoggedIn() {
		return nil, unauthorized("GET", "/user/cart")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(sess), nil
}

func (r *MockCartRepository) snapshot(sess models.Session) *models.CartData {
	c := r.cart(sess.Token)
	data := &models.CartData{Items: []models.CartItem{}, FreeDeliveryThreshold: MockFreeDeliveryThreshold}

	var summary models.CartSummary
	for _, item := range c.items {
		if p, ok := r.catalog.Lookup(item.SellerProductID); ok {
			item.IsAvailable = p.servedIn(sess.Pincode) && p.Detail.Stock >= item.Qty
			item.StockQty = p.Detail.Stock
		}
		qty := decimal.NewFromInt(int64(item.Qty))
		item.ItemTotal = item.Price.Mul(qty)
		item.OriginalTotal = item.ActPrice.Mul(qty)
		item.Discount = item.OriginalTotal.Sub(item.ItemTotal)
		item.Pincode = models.FlexString(sess.Pincode)
		data.Items = append(data.Items, item)

		summary.TotalItems++
		summary.TotalQuantity += item.Qty
		summary.Subtotal = summary.Subtotal.Add(item.ItemTotal)
		summary.OriginalTotal = summary.OriginalTotal.Add(item.OriginalTotal)
	}
	summary.RawSubtotal = summary.Subtotal
	if pct, ok := MockCoupons[c.coupon]; ok {
		summary.Discount = summary.Subtotal.Mul(decimal.NewFromInt(pct)).Div(decimal.NewFromInt(100)).Round(2)
		summary.Coupon = []byte(fmt.Sprintf(`{"code":%q,"percent":%d}`, c.coupon, pct))
	}
	if len(c.items) > 0 {
		summary.HandlingFee = MockHandlingFee
		if summary.Subtotal.LessThan(MockFreeDeliveryThreshold) {
			summary.DeliveryFee = MockDeliveryFee
		}
	}
	summary.Total = summary.GrandTotal(decimal.Zero)

	data.Summary = summary
	data.CurrentAmount = summary.Subtotal
	if need := MockFreeDeliveryThreshold.Sub(summary.Subtotal); need.IsPositive() {
		data.AmountNeededForFreeDelivery = need
	}
	return data
}

// Add puts a product in the cart, merging with an existing line.
func (r *MockCartRepository) Add(_ context.Context, sess models.Session, req models.AddToCartRequest) error {
	if !sess.LoggedIn() {
		return unauthorized("POST", "/user/cart")
	}
	p, ok := r.catalog.Lookup(req.SellerProductID)
	if !ok {
		return &restclient.HTTPError{Method: "POST", Path: "/user/cart", StatusCode: http.StatusNotFound, Message: "Product not found"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cart(sess.Token)
	for i := range c.items {
		if c.items[i].SellerProductID == req.SellerProductID {
			c.items[i].Qty += req.Quantity
			return nil
		}
	}
	r.nextID++
	image := ""
	if len(p.Detail.Images) > 0 {
		image = p.Detail.Images[0]
	}
	c.items = append(c.items, models.CartItem{
		CartID:          r.nextID,
		SellerProductID: req.SellerProductID,
		ProductName:     p.Detail.Name,
		Description:     p.Detail.Description,
		Qty:             req.Quantity,
		Unit:            p.Unit,
		Price:           p.Detail.SalePrice,
		ActPrice:        p.Detail.ActPrice,
		Image:           image,
		IsAvailable:     true,
	})
	return nil
}

// UpdateQuantity sets a line's quantity.
func (r *MockCartRepository) UpdateQuantity(_ context.Context, sess models.Session, cartID int64, qty int) error {
	path := fmt.Sprintf("/user/cart/items/%d", cartID)
	if !sess.LoggedIn() {
		return unauthorized("PUT", path)
	}
	if qty < 1 {
		return &restclient.HTTPError{Method: "PUT", Path: path, StatusCode: http.StatusBadRequest, Message: "Quantity must be at least 1"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cart(sess.Token)
	for i := range c.items {
		if c.items[i].CartID == cartID {
			c.items[i].Qty = qty
			return nil
		}
	}
	return &restclient.HTTPError{Method: "PUT", Path: path, StatusCode: http.StatusNotFound, Message: "Cart item not found"}
}

// Remove deletes a line.
func (r *MockCartRepository) Remove(_ context.Context, sess models.Session, cartID int64) error {
	path := fmt.Sprintf("/user/cart/items/%d", cartID)
	if !sess.LoggedIn() {
		return unauthorized("DELETE", path)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.cart(sess.Token)
	for i := range c.items {
		if c.items[i].CartID == cartID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return &restclient.HTTPError{Method: "DELETE", Path: path, StatusCode: http.StatusNotFound, Message: "Cart item not found"}
}

// Clear empties the cart, unless ClearUnsupported is set.
func (r *MockCartRepository) Clear(_ context.Context, sess models.Session) error {
	if !sess.LoggedIn() {
		return unauthorized("DELETE", "/user/cart/items")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ClearUnsupported {
		return &restclient.HTTPError{Method: "DELETE", Path: "/user/cart/items", StatusCode: http.StatusNotFound}
	}
	r.cart(sess.Token).items = nil
	return nil
}

// ApplyCoupon applies one of MockCoupons.
func (r *MockCartRepository) ApplyCoupon(_ context.Context, sess models.Session, code string) error {
	if !sess.LoggedIn() {
		return unauthorized("POST", "/user/cart/coupon")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := MockCoupons[code]; !ok {
		return &restclient.HTTPError{Method: "POST", Path: "/user/cart/coupon", StatusCode: http.StatusBadRequest, Message: "Invalid coupon code"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart(sess.Token).coupon = code
	return nil
}

// checkout returns the snapshot and empties the cart, as order placement
// does on the backend.
func (r *MockCartRepository) checkout(sess models.Session) *models.CartData {
	r.mu.Lock()
	defer r.mu.Unlock()
	data := r.snapshot(sess)
	c := r.cart(sess.Token)
	c.items = nil
	c.coupon = ""
	return data
}
