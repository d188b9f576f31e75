package services_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"ilbmart/internal/models"
	"ilbmart/internal/services"
	"ilbmart/pkg/restclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc       *services.CheckoutService
	cart      *services.CartService
	cartRepo  *MockCartRepository
	orders    *MockOrderRepository
	scheduler *manualScheduler
	publisher *recordingPublisher
	navigated []string
}

func newCheckoutFixture(t *testing.T, cart *models.CartData, opts ...func(*services.CheckoutConfig)) *checkoutFixture {
	t.Helper()
	sess := newSession(t, "tok", "201303")
	f := &checkoutFixture{
		cartRepo:  new(MockCartRepository),
		orders:    new(MockOrderRepository),
		scheduler: &manualScheduler{},
		publisher: &recordingPublisher{},
	}
	f.cart = services.NewCartService(f.cartRepo, sess)
	if cart != nil {
		f.cartRepo.On("Get", mock.Anything, mock.Anything).Return(cart, nil).Once()
		require.NoError(t, f.cart.Fetch(context.Background()))
	}
	cfg := services.CheckoutConfig{
		RedirectDelay: 2 * time.Second,
		Publisher:     f.publisher,
		Navigator:     func(path string) { f.navigated = append(f.navigated, path) },
		Scheduler:     f.scheduler.Schedule,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f.svc = services.NewCheckoutService(f.orders, f.cart, sess, cfg)
	return f
}

func onlineResult() *models.PlaceOrderResult {
	return &models.PlaceOrderResult{
		TransactionNumber: "TXN-1",
		Orders:            []models.Order{{OrderNumber: "ORD-1"}},
		Gateway:           &models.GatewayOrder{Key: "rzp", Amount: 42000, Currency: "INR", Name: "ILB Mart", OrderID: "order_1"},
	}
}

func TestCheckout_BlockedCartNeverCallsBackend(t *testing.T) {
	unavailable := sampleCart()
	unavailable.Items[0].IsAvailable = false

	for name, cart := range map[string]*models.CartData{"no snapshot": nil, "unavailable line": unavailable} {
		t.Run(name, func(t *testing.T) {
			f := newCheckoutFixture(t, cart)
			_, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: models.PaymentCOD})
			assert.ErrorIs(t, err, services.ErrCheckoutBlocked)
			f.orders.AssertNotCalled(t, "Place", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCheckout_InvalidPaymentMethod(t *testing.T) {
	f := newCheckoutFixture(t, sampleCart())
	_, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: "upi"})
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCheckout_CODCompletesAndRefetches(t *testing.T) {
	f := newCheckoutFixture(t, sampleCart())
	req := models.PlaceOrderRequest{PaymentMethod: models.PaymentCOD, DeliveryNotes: "Leave at door"}
	f.orders.On("Place", mock.Anything, mock.Anything, req).
		Return(&models.PlaceOrderResult{TransactionNumber: "TXN-2", Orders: []models.Order{{OrderNumber: "ORD-2"}}}, nil).Once()
	f.cartRepo.On("Get", mock.Anything, mock.Anything).Return(&models.CartData{}, nil).Once()

	attempt, err := f.svc.Begin(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, services.StateCompleted, attempt.State)
	assert.Contains(t, attempt.Message, "ORD-2")
	assert.Contains(t, attempt.Message, "Cash on Delivery")
	assert.Empty(t, attempt.RedirectTo)

	f.cartRepo.AssertNumberOfCalls(t, "Get", 2)
	assert.Equal(t, []string{"checkout.creating_order", "checkout.cod_submitted", "checkout.completed"}, f.publisher.Types())
	assert.Empty(t, f.scheduler.fns)
}

func TestCheckout_OrderCreationFailure(t *testing.T) {
	f := newCheckoutFixture(t, sampleCart())
	f.orders.On("Place", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &restclient.HTTPError{Method: "POST", Path: "/user/orders", StatusCode: http.StatusBadRequest, Message: "Address missing"}).Once()

	attempt, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: models.PaymentOnline})
	require.NoError(t, err)
	assert.Equal(t, services.StateFailed, attempt.State)
	assert.Equal(t, "Failed to create order: Address missing", attempt.Message)
	f.cartRepo.AssertNumberOfCalls(t, "Get", 1)
}

func TestCheckout_MissingGatewayOrderFails(t *testing.T) {
	f := newCheckoutFixture(t, sampleCart())
	res := onlineResult()
	res.Gateway.OrderID = ""
	f.orders.On("Place", mock.Anything, mock.Anything, mock.Anything).Return(res, nil).Once()

	attempt, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: models.PaymentOnline})
	require.NoError(t, err)
	assert.Equal(t, services.StateFailed, attempt.State)
	assert.Nil(t, attempt.Gateway)
}

func TestCheckout_OnlineVerifiedPayment(t *testing.T) {
	f := newCheckoutFixture(t, sampleCart())
	f.orders.On("Place", mock.Anything, mock.Anything, mock.Anything).Return(onlineResult(), nil).Once()

	attempt, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: models.PaymentOnline, DeliveryNotes: "ring"})
	require.NoError(t, err)
	require.Equal(t, services.StateAwaitingGateway, attempt.State)
	require.NotNil(t, attempt.Gateway)
	assert.Equal(t, "order_1", attempt.Gateway.OrderID)
	assert.Equal(t, int64(42000), attempt.Gateway.Amount)
	assert.Equal(t, map[string]string{"transaction_number": "TXN-1", "order_number": "ORD-1"}, attempt.Gateway.Notes)

	verify := models.VerifyPaymentRequest{GatewayOrderID: "order_1", GatewayPaymentID: "pay_1", GatewaySignature: "sig"}
	f.orders.On("VerifyPayment", mock.Anything, mock.Anything, verify).Return(nil).Once()
	f.cartRepo.On("Get", mock.Anything, mock.Anything).Return(&models.CartData{}, nil).Once()

	attempt, err = f.svc.Resolve(context.Background(), attempt.ID, services.GatewayResult{
		Outcome: services.GatewaySuccess, OrderID: "order_1", PaymentID: "pay_1", Signature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, services.StateCompleted, attempt.State)
	assert.True(t, attempt.Verified)
	assert.Equal(t, services.OrdersPath, attempt.RedirectTo)
	assert.Equal(t, 2*time.Second, attempt.RedirectAfter)

	f.cartRepo.AssertNumberOfCalls(t, "Get", 2)
	assert.Equal(t, []time.Duration{2 * time.Second}, f.scheduler.delays)
	assert.Empty(t, f.navigated)
	f.scheduler.RunAll()
	assert.Equal(t, []string{"/profile?section=orders"}, f.navigated)

	stored, err := f.svc.Attempt(attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, services.StateCompleted, stored.State)
	f.orders.AssertExpectations(t)
}

func TestCheckout_VerifyFailureStillCompletes(t *testing.T) {
	f := newCheckoutFixture(t, sampleCart())
	f.orders.On("Place", mock.Anything, mock.Anything, mock.Anything).Return(onlineResult(), nil).Once()
	attempt, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: models.PaymentOnline})
	require.NoError(t, err)

	f.orders.On("VerifyPayment", mock.Anything, mock.Anything, mock.Anything).
		Return(&restclient.HTTPError{Method: "POST", Path: "/user/orders/verify-payment", StatusCode: http.StatusBadRequest, Message: "Invalid signature"}).Once()
	f.cartRepo.On("Get", mock.Anything, mock.Anything).Return(&models.CartData{}, nil).Once()

	attempt, err = f.svc.Resolve(context.Background(), attempt.ID, services.GatewayResult{
		Outcome: services.GatewaySuccess, PaymentID: "pay_1", Signature: "sig",
	})
	require.NoError(t, err)
	assert.Equal(t, services.StateCompleted, attempt.State)
	assert.False(t, attempt.Verified)
	assert.Contains(t, attempt.Message, "Status will be updated shortly")
	assert.Equal(t, services.OrdersPath, attempt.RedirectTo)
	f.cartRepo.AssertNumberOfCalls(t, "Get", 2)
	assert.Len(t, f.scheduler.fns, 1)

	types := f.publisher.Types()
	assert.Equal(t, "checkout.completed_unverified", types[len(types)-1])
}

func TestCheckout_GatewayFailureAndDismiss(t *testing.T) {
	for _, tc := range []struct {
		outcome string
		state   services.CheckoutState
		message string
	}{
		{services.GatewayFailed, services.StateFailed, "Payment failed: Card declined. Transaction: TXN-1. Please try again or contact support."},
		{services.GatewayDismissed, services.StateCancelled, "Payment cancelled. Your order has been saved but not confirmed. Transaction: TXN-1"},
	} {
		t.Run(tc.outcome, func(t *testing.T) {
			f := newCheckoutFixture(t, sampleCart())
			f.orders.On("Place", mock.Anything, mock.Anything, mock.Anything).Return(onlineResult(), nil).Once()
			attempt, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: models.PaymentOnline})
			require.NoError(t, err)

			attempt, err = f.svc.Resolve(context.Background(), attempt.ID, services.GatewayResult{Outcome: tc.outcome, ErrorDescription: "Card declined"})
			require.NoError(t, err)
			assert.Equal(t, tc.state, attempt.State)
			assert.Equal(t, tc.message, attempt.Message)

			f.orders.AssertNotCalled(t, "VerifyPayment", mock.Anything, mock.Anything, mock.Anything)
			f.cartRepo.AssertNumberOfCalls(t, "Get", 1)
			assert.Empty(t, f.scheduler.fns)

			_, err = f.svc.Resolve(context.Background(), attempt.ID, services.GatewayResult{Outcome: services.GatewayDismissed})
			assert.ErrorIs(t, err, services.ErrInvalidTransition)
		})
	}
}

func TestCheckout_UnknownAttempt(t *testing.T) {
	f := newCheckoutFixture(t, sampleCart())
	_, err := f.svc.Resolve(context.Background(), "missing", services.GatewayResult{Outcome: services.GatewayDismissed})
	assert.ErrorIs(t, err, services.ErrAttemptNotFound)
	_, err = f.svc.Attempt("missing")
	assert.ErrorIs(t, err, services.ErrAttemptNotFound)
}

func TestCheckout_NetworkErrorMessage(t *testing.T) {
	f := newCheckoutFixture(t, sampleCart())
	f.orders.On("Place", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &restclient.NetworkError{Method: "POST", Path: "/user/orders", Err: errors.New("reset")}).Once()

	attempt, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: models.PaymentCOD})
	require.NoError(t, err)
	assert.Equal(t, "Error placing order. Please try again.", attempt.Message)
}

// attemptReadingPublisher reads the attempt back while publishing, which
// only works when the service lock is not held.
type attemptReadingPublisher struct {
	svc     *services.CheckoutService
	mu      sync.Mutex
	read    []string
	blocked int
}

func (p *attemptReadingPublisher) PublishCheckoutEvent(event models.CheckoutEvent) error {
	done := make(chan *services.Attempt, 1)
	go func() {
		a, _ := p.svc.Attempt(event.AttemptID)
		done <- a
	}()
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case a := <-done:
		if a != nil {
			p.read = append(p.read, event.Type)
		}
	case <-time.After(time.Second):
		p.blocked++
	}
	return nil
}

func TestCheckout_PublishesOutsideTheLock(t *testing.T) {
	publisher := &attemptReadingPublisher{}
	f := newCheckoutFixture(t, sampleCart(), func(cfg *services.CheckoutConfig) { cfg.Publisher = publisher })
	publisher.svc = f.svc
	f.orders.On("Place", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.PlaceOrderResult{TransactionNumber: "TXN-2", Orders: []models.Order{{OrderNumber: "ORD-2"}}}, nil).Once()
	f.cartRepo.On("Get", mock.Anything, mock.Anything).Return(&models.CartData{}, nil).Once()

	attempt, err := f.svc.Begin(context.Background(), models.PlaceOrderRequest{PaymentMethod: models.PaymentCOD})
	require.NoError(t, err)
	assert.Equal(t, services.StateCompleted, attempt.State)

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Zero(t, publisher.blocked)
	assert.Equal(t, []string{"checkout.creating_order", "checkout.cod_submitted", "checkout.completed"}, publisher.read)
}

func TestCheckout_FinishedAttemptsExpire(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f := newCheckoutFixture(t, sampleCart(), func(cfg *services.CheckoutConfig) {
		cfg.AttemptTTL = time.Minute
		cfg.Now = func() time.Time { return now }
	})
	f.cartRepo.On("Get", mock.Anything, mock.Anything).Return(sampleCart(), nil)
	online := models.PlaceOrderRequest{PaymentMethod: models.PaymentOnline}
	cod := models.PlaceOrderRequest{PaymentMethod: models.PaymentCOD}
	f.orders.On("Place", mock.Anything, mock.Anything, online).Return(onlineResult(), nil).Once()
	f.orders.On("Place", mock.Anything, mock.Anything, cod).
		Return(&models.PlaceOrderResult{TransactionNumber: "TXN-2", Orders: []models.Order{{OrderNumber: "ORD-2"}}}, nil)
	ctx := context.Background()

	pending, err := f.svc.Begin(ctx, online)
	require.NoError(t, err)
	require.Equal(t, services.StateAwaitingGateway, pending.State)
	old, err := f.svc.Begin(ctx, cod)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	recent, err := f.svc.Begin(ctx, cod)
	require.NoError(t, err)
	_, err = f.svc.Attempt(old.ID)
	require.NoError(t, err, "within the TTL")

	now = now.Add(45 * time.Second)
	latest, err := f.svc.Begin(ctx, cod)
	require.NoError(t, err)

	_, err = f.svc.Attempt(old.ID)
	assert.ErrorIs(t, err, services.ErrAttemptNotFound)
	_, err = f.svc.Attempt(recent.ID)
	assert.NoError(t, err)
	_, err = f.svc.Attempt(pending.ID)
	assert.NoError(t, err, "attempts still awaiting the gateway are kept")
	_, err = f.svc.Attempt(latest.ID)
	assert.NoError(t, err)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, services.CanTransition(services.StateIdle, services.StateCreatingOrder))
	assert.True(t, services.CanTransition(services.StateVerifying, services.StateCompleted))
	assert.False(t, services.CanTransition(services.StateVerifying, services.StateFailed))
	assert.False(t, services.CanTransition(services.StateCompleted, services.StateIdle))
	assert.False(t, services.CanTransition(services.StateCODSubmitted, services.StateFailed))
	assert.True(t, services.StateCancelled.Terminal())
	assert.False(t, services.StateAwaitingGateway.Terminal())
}
