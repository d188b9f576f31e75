package repositories

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"
)

// MockWishlistRepository is an in-memory implementation of WishlistRepository.
type MockWishlistRepository struct {
	catalog *MockCatalogRepository
	items   map[string][]models.WishlistItem
	nextID  int64
	mu      sync.RWMutex
}

// NewMockWishlistRepository creates a new instance of MockWishlistRepository.
func NewMockWishlistRepository(catalog *MockCatalogRepository) *MockWishlistRepository {
	return &MockWishlistRepository{
		catalog: catalog,
		items:   make(map[string][]models.WishlistItem),
	}
}

// List returns the saved products, with availability for the session pincode.
func (r *MockWishlistRepository) List(_ context.Context, sess models.Session) ([]models.WishlistItem, error) {
	if !sess.LoggedIn() {
		return nil, unauthorized("GET", "/user/wishlist")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.WishlistItem{}
	for _, item := range r.items[sess.Token] {
		if p, ok := r.catalog.Lookup(item.SellerProductID); ok {
			item.IsAvailable = p.servedIn(sess.Pincode) && p.Detail.Stock > 0
			item.StockQuantity = p.Detail.Stock
		}
		item.Pincode = models.FlexString(sess.Pincode)
		out = append(out, item)
	}
	return out, nil
}

// Add saves a product once.
func (r *MockWishlistRepository) Add(_ context.Context, sess models.Session, sellerProductID int64) error {
	if !sess.LoggedIn() {
		return unauthorized("POST", "/user/wishlist")
	}
	p, ok := r.catalog.Lookup(sellerProductID)
	if !ok {
		return &restclient.HTTPError{Method: "POST", Path: "/user/wishlist", StatusCode: http.StatusNotFound, Message: "Product not found"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items[sess.Token] {
		if item.SellerProductID == sellerProductID {
			return &restclient.HTTPError{Method: "POST", Path: "/user/wishlist", StatusCode: http.StatusConflict, Message: "Already in wishlist"}
		}
	}
	r.nextID++
	image := ""
	if len(p.Detail.Images) > 0 {
		image = p.Detail.Images[0]
	}
	r.items[sess.Token] = append(r.items[sess.Token], models.WishlistItem{
		WishlistID:      r.nextID,
		SellerProductID: sellerProductID,
		Name:            p.Detail.Name,
		Description:     p.Detail.Description,
		ActPrice:        p.Detail.ActPrice,
		Price:           p.Detail.SalePrice,
		Unit:            p.Unit,
		Image:           image,
	})
	return nil
}

// Remove deletes a saved product.
func (r *MockWishlistRepository) Remove(_ context.Context, sess models.Session, wishlistID int64) error {
	path := fmt.Sprintf("/user/wishlist/%d", wishlistID)
	if !sess.LoggedIn() {
		return unauthorized("DELETE", path)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[sess.Token]
	for i := range items {
		if items[i].WishlistID == wishlistID {
			r.items[sess.Token] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return &restclient.HTTPError{Method: "DELETE", Path: path, StatusCode: http.StatusNotFound, Message: "Wishlist item not found"}
}
