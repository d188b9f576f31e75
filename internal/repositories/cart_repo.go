package repositories

import (
	"context"

	"ilbmart/internal/models"
)

// CartRepository manages the server-owned cart of the logged-in customer.
type CartRepository interface {
	Get(ctx context.Context, sess models.Session) (*models.CartData, error)
	Add(ctx context.Context, sess models.Session, req models.AddToCartRequest) error
	UpdateQuantity(ctx context.Context, sess models.Session, cartID int64, qty int) error
	Remove(ctx context.Context, sess models.Session, cartID int64) error
	Clear(ctx context.Context, sess models.Session) error
	ApplyCoupon(ctx context.Context, sess models.Session, code string) error
}
