package repositories

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"

	"github.com/google/uuid"
)

// MockGatewayKey is the publishable key the in-memory backend hands out.
const MockGatewayKey = "rzp_test_mock"

// MockGatewaySignature signs a gateway order/payment pair the way the hosted
// gateway does, with HMAC-SHA256 over "order_id|payment_id".
func MockGatewaySignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	cart    *MockCartRepository
	secret  string
	orders  map[string][]models.OrderSummary
	pending map[string]string // gateway order id -> order_id
	nextID  int64
	mu      sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository(cart *MockCartRepository, secret string) *MockOrderRepository {
	return &MockOrderRepository{
		cart:    cart,
		secret:  secret,
		orders:  make(map[string][]models.OrderSummary),
		pending: make(map[string]string),
	}
}

// Place turns the cart into an order. Online orders also get a gateway order.
func (r *MockOrderRepository) Place(ctx context.Context, sess models.Session, req models.PlaceOrderRequest) (*models.PlaceOrderResult, error) {
	const path = "/user/orders"
	if !sess.LoggedIn() {
		return nil, unauthorized("POST", path)
	}
	if req.PaymentMethod != models.PaymentOnline && req.PaymentMethod != models.PaymentCOD {
		return nil, &restclient.HTTPError{Method: "POST", Path: path, StatusCode: http.StatusBadRequest, Message: "Invalid payment method"}
	}
	cart, err := r.cart.Get(ctx, sess)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, &restclient.HTTPError{Method: "POST", Path: path, StatusCode: http.StatusBadRequest, Message: "Cart is empty"}
	}
	if cart.HasUnavailable() {
		return nil, &restclient.HTTPError{Method: "POST", Path: path, StatusCode: http.StatusConflict, Message: "Some items are unavailable"}
	}
	cart = r.cart.checkout(sess)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	short := strings.ToUpper(uuid.New().String()[:8])
	orderNumber := "ORD-" + short
	result := &models.PlaceOrderResult{
		TransactionNumber: "TXN-" + short,
		Orders: []models.Order{{
			OrderNumber:       orderNumber,
			TransactionNumber: "TXN-" + short,
			PaymentMethod:     req.PaymentMethod,
			Status:            "pending",
			DeliveryNotes:     req.DeliveryNotes,
		}},
	}

	summary := models.OrderSummary{
		ID:            r.nextID,
		OrderID:       orderNumber,
		OrderStatus:   "Pending",
		TotalAmount:   cart.Summary.Total,
		PaymentType:   string(req.PaymentMethod),
		PaymentStatus: "pending",
		CreatedAt:     time.Now().Format(time.RFC3339),
	}
	if req.PaymentMethod == models.PaymentOnline {
		gatewayID := "order_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:14]
		result.Gateway = &models.GatewayOrder{
			Key:         MockGatewayKey,
			Amount:      cart.Summary.Total.Shift(2).Round(0).IntPart(),
			Currency:    "INR",
			Name:        "ILB Mart",
			Description: "Order " + orderNumber,
			OrderID:     gatewayID,
		}
		r.pending[gatewayID] = orderNumber
	}
	r.orders[sess.Token] = append(r.orders[sess.Token], summary)
	return result, nil
}

// VerifyPayment checks the gateway signature and marks the order paid.
func (r *MockOrderRepository) VerifyPayment(_ context.Context, sess models.Session, req models.VerifyPaymentRequest) error {
	const path = "/user/orders/verify-payment"
	if !sess.LoggedIn() {
		return unauthorized("POST", path)
	}
	expected := MockGatewaySignature(r.secret, req.GatewayOrderID, req.GatewayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(req.GatewaySignature)) {
		return &restclient.HTTPError{Method: "POST", Path: path, StatusCode: http.StatusBadRequest, Message: "Invalid payment signature"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	orderNumber, ok := r.pending[req.GatewayOrderID]
	if !ok {
		return &restclient.HTTPError{Method: "POST", Path: path, StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Unknown gateway order %s", req.GatewayOrderID)}
	}
	delete(r.pending, req.GatewayOrderID)
	orders := r.orders[sess.Token]
	for i := range orders {
		if orders[i].OrderID == orderNumber {
			orders[i].PaymentStatus = "paid"
			orders[i].OrderStatus = "Processing"
		}
	}
	return nil
}

// Current lists orders that are not delivered or cancelled.
func (r *MockOrderRepository) Current(_ context.Context, sess models.Session) ([]models.OrderSummary, error) {
	return r.list(sess, func(o models.OrderSummary) bool {
		class := models.StatusClass(o.OrderStatus)
		return class != models.StatusDelivered && class != models.StatusCancelled
	})
}

// History lists every order.
func (r *MockOrderRepository) History(_ context.Context, sess models.Session) ([]models.OrderSummary, error) {
	return r.list(sess, func(models.OrderSummary) bool { return true })
}

func (r *MockOrderRepository) list(sess models.Session, keep func(models.OrderSummary) bool) ([]models.OrderSummary, error) {
	if !sess.LoggedIn() {
		return nil, unauthorized("GET", "/user/orders")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.OrderSummary{}
	for _, o := range r.orders[sess.Token] {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out, nil
}
