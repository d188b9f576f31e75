package repositories

import (
	"context"
	"fmt"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"
)

// HTTPCartRepository is the /user/cart backend.
type HTTPCartRepository struct {
	client *restclient.Client
}

// NewHTTPCartRepository creates a new HTTPCartRepository.
func NewHTTPCartRepository(client *restclient.Client) *HTTPCartRepository {
	return &HTTPCartRepository{client: client}
}

// Get fetches the cart snapshot for the session's pincode.
func (r *HTTPCartRepository) Get(ctx context.Context, sess models.Session) (*models.CartData, error) {
	cart, err := getData[*models.CartData](ctx, r.client, "/user/cart", cartScope(sess))
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		cart = &models.CartData{}
	}
	return cart, nil
}

// Add puts a product in the cart.
func (r *HTTPCartRepository) Add(ctx context.Context, sess models.Session, req models.AddToCartRequest) error {
	if err := r.client.Post(ctx, "/user/cart", userScope(sess), req, nil); err != nil {
		return fmt.Errorf("failed to add product %d to cart: %w", req.SellerProductID, err)
	}
	return nil
}

// UpdateQuantity sets the quantity of a cart line.
func (r *HTTPCartRepository) UpdateQuantity(ctx context.Context, sess models.Session, cartID int64, qty int) error {
	path := fmt.Sprintf("/user/cart/items/%d", cartID)
	if err := r.client.Put(ctx, path, userScope(sess), models.UpdateQuantityRequest{Quantity: qty}, nil); err != nil {
		return fmt.Errorf("failed to update cart item %d: %w", cartID, err)
	}
	return nil
}

// Remove deletes a cart line.
func (r *HTTPCartRepository) Remove(ctx context.Context, sess models.Session, cartID int64) error {
	path := fmt.Sprintf("/user/cart/items/%d", cartID)
	if err := r.client.Delete(ctx, path, userScope(sess), nil); err != nil {
		return fmt.Errorf("failed to remove cart item %d: %w", cartID, err)
	}
	return nil
}

// Clear deletes every cart line in one call. Backends without the endpoint
// answer non-2xx.
func (r *HTTPCartRepository) Clear(ctx context.Context, sess models.Session) error {
	if err := r.client.Delete(ctx, "/user/cart/items", userScope(sess), nil); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ApplyCoupon applies a coupon code to the cart.
func (r *HTTPCartRepository) ApplyCoupon(ctx context.Context, sess models.Session, code string) error {
	if err := r.client.Post(ctx, "/user/cart/coupon", userScope(sess), models.CouponRequest{CouponCode: code}, nil); err != nil {
		return fmt.Errorf("failed to apply coupon: %w", err)
	}
	return nil
}
