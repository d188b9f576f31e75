package repositories

import (
	"context"
	"fmt"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"
)

// HTTPOrderRepository is the /user/orders backend.
type HTTPOrderRepository struct {
	client *restclient.Client
}

// NewHTTPOrderRepository creates a new HTTPOrderRepository.
func NewHTTPOrderRepository(client *restclient.Client) *HTTPOrderRepository {
	return &HTTPOrderRepository{client: client}
}

// Place creates the order(s) for the current cart.
func (r *HTTPOrderRepository) Place(ctx context.Context, sess models.Session, req models.PlaceOrderRequest) (*models.PlaceOrderResult, error) {
	const path = "/user/orders"
	var env dataEnvelope
	if err := r.client.Post(ctx, path, userScope(sess), req, &env); err != nil {
		return nil, fmt.Errorf("failed to place %s order: %w", req.PaymentMethod, err)
	}
	result, err := decodeData[*models.PlaceOrderResult](path, env.Data)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &models.PlaceOrderResult{}
	}
	return result, nil
}

// VerifyPayment asks the backend to verify the gateway signature.
func (r *HTTPOrderRepository) VerifyPayment(ctx context.Context, sess models.Session, req models.VerifyPaymentRequest) error {
	if err := r.client.Post(ctx, "/user/orders/verify-payment", userScope(sess), req, nil); err != nil {
		return fmt.Errorf("failed to verify payment %s: %w", req.GatewayPaymentID, err)
	}
	return nil
}

// Current lists orders that are still in progress.
func (r *HTTPOrderRepository) Current(ctx context.Context, sess models.Session) ([]models.OrderSummary, error) {
	orders, err := getData[[]models.OrderSummary](ctx, r.client, "/user/orders/current", userScope(sess))
	if err != nil {
		return nil, fmt.Errorf("failed to get current orders: %w", err)
	}
	return nonNil(orders), nil
}

// History lists past orders.
func (r *HTTPOrderRepository) History(ctx context.Context, sess models.Session) ([]models.OrderSummary, error) {
	orders, err := getData[[]models.OrderSummary](ctx, r.client, "/user/orders/history", userScope(sess))
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	return nonNil(orders), nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
