package repositories

import (
	"context"

	"ilbmart/internal/models"
)

// WishlistRepository manages the customer's saved products.
type WishlistRepository interface {
	List(ctx context.Context, sess models.Session) ([]models.WishlistItem, error)
	Add(ctx context.Context, sess models.Session, sellerProductID int64) error
	Remove(ctx context.Context, sess models.Session, wishlistID int64) error
}
