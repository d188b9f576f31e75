package repositories

import (
	"context"
	"fmt"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"
)

// HTTPWishlistRepository is the /user/wishlist backend.
type HTTPWishlistRepository struct {
	client *restclient.Client
}

// NewHTTPWishlistRepository creates a new HTTPWishlistRepository.
func NewHTTPWishlistRepository(client *restclient.Client) *HTTPWishlistRepository {
	return &HTTPWishlistRepository{client: client}
}

// List returns the saved products.
func (r *HTTPWishlistRepository) List(ctx context.Context, sess models.Session) ([]models.WishlistItem, error) {
	items, err := getData[[]models.WishlistItem](ctx, r.client, "/user/wishlist", userScope(sess))
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return nonNil(items), nil
}

// Add saves a product.
func (r *HTTPWishlistRepository) Add(ctx context.Context, sess models.Session, sellerProductID int64) error {
	req := models.WishlistRequest{SellerProductID: sellerProductID}
	if err := r.client.Post(ctx, "/user/wishlist", userScope(sess), req, nil); err != nil {
		return fmt.Errorf("failed to add product %d to wishlist: %w", sellerProductID, err)
	}
	return nil
}

// Remove deletes a saved product by wishlist id.
func (r *HTTPWishlistRepository) Remove(ctx context.Context, sess models.Session, wishlistID int64) error {
	path := fmt.Sprintf("/user/wishlist/%d", wishlistID)
	if err := r.client.Delete(ctx, path, userScope(sess), nil); err != nil {
		return fmt.Errorf("failed to remove wishlist item %d: %w", wishlistID, err)
	}
	return nil
}
