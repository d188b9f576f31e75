package repositories

import (
	"context"

	"ilbmart/internal/models"
)

// OrderRepository places orders and reads the customer's order lists.
type OrderRepository interface {
	Place(ctx context.Context, sess models.Session, req models.PlaceOrderRequest) (*models.PlaceOrderResult, error)
	VerifyPayment(ctx context.Context, sess models.Session, req models.VerifyPaymentRequest) error
	Current(ctx context.Context, sess models.Session) ([]models.OrderSummary, error)
	History(ctx context.Context, sess models.Session) ([]models.OrderSummary, error)
}
