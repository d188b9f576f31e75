package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"ilbmart/internal/models"
	"ilbmart/internal/repositories"
	"ilbmart/internal/session"
	"ilbmart/pkg/restclient"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CheckoutState is a state of a checkout attempt.
type CheckoutState string

const (
	StateIdle            CheckoutState = "idle"
	StateCreatingOrder   CheckoutState = "creating_order"
	StateAwaitingGateway CheckoutState = "awaiting_gateway"
	StateCODSubmitted    CheckoutState = "cod_submitted"
	StateVerifying       CheckoutState = "verifying"
	StateCompleted       CheckoutState = "completed"
	StateFailed          CheckoutState = "failed"
	StateCancelled       CheckoutState = "cancelled"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	StateIdle:            {StateCreatingOrder},
	StateCreatingOrder:   {StateAwaitingGateway, StateCODSubmitted, StateFailed},
	StateAwaitingGateway: {StateVerifying, StateFailed, StateCancelled},
	StateCODSubmitted:    {StateCompleted},
	StateVerifying:       {StateCompleted},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to CheckoutState) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves state.
func (s CheckoutState) Terminal() bool {
	return len(checkoutTransitions[s]) == 0
}

// OrdersPath is where a completed online payment navigates to.
const OrdersPath = "/profile?section=orders"

// Gateway outcomes reported back by the hosted checkout widget.
const (
	GatewaySuccess   = "success"
	GatewayFailed    = "failed"
	GatewayDismissed = "dismissed"
)

// GatewayResult is what the hosted checkout widget reported.
type GatewayResult struct {
	Outcome          string `json:"outcome" validate:"required,oneof=success failed dismissed"`
	OrderID          string `json:"razorpay_order_id"`
	PaymentID        string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
	ErrorDescription string `json:"error_description"`
}

// GatewayCheckout is everything the hosted checkout widget is opened with.
type GatewayCheckout struct {
	models.GatewayOrder
	Notes map[string]string `json:"notes"`
}

// Attempt is one run through the checkout flow.
type Attempt struct {
	ID                string               `json:"id"`
	State             CheckoutState        `json:"state"`
	PaymentMethod     models.PaymentMethod `json:"payment_method"`
	DeliveryNotes     string               `json:"delivery_notes,omitempty"`
	TransactionNumber string               `json:"transaction_number,omitempty"`
	OrderNumber       string               `json:"order_number,omitempty"`
	Gateway           *GatewayCheckout     `json:"gateway,omitempty"`
	PaymentID         string               `json:"payment_id,omitempty"`
	Verified          bool                 `json:"verified"`
	Message           string               `json:"message,omitempty"`
	RedirectTo        string               `json:"redirect_to,omitempty"`
	RedirectAfter     time.Duration        `json:"redirect_after,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// EventPublisher receives checkout lifecycle events.
type EventPublisher interface {
	PublishCheckoutEvent(event models.CheckoutEvent) error
}

// Navigator performs a client-side navigation.
type Navigator func(path string)

// Scheduler runs fn after d.
type Scheduler func(d time.Duration, fn func())

// CheckoutConfig tunes a CheckoutService. Zero values get defaults.
type CheckoutConfig struct {
	RedirectDelay time.Duration
	// AttemptTTL is how long a finished attempt stays readable.
	AttemptTTL time.Duration
	Publisher  EventPublisher
	Navigator  Navigator
	Scheduler  Scheduler
	Now        func() time.Time
}

// CheckoutService drives checkout attempts through their state machine.
type CheckoutService struct {
	orders   repositories.OrderRepository
	cart     *CartService
	sess     *session.Session
	validate *validator.Validate
	cfg      CheckoutConfig

	mu       sync.Mutex
	attempts map[string]*Attempt
	// outbox holds events raised under mu until it is released.
	outbox []models.CheckoutEvent
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(orders repositories.OrderRepository, cart *CartService, sess *session.Session, cfg CheckoutConfig) *CheckoutService {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = 2 * time.Second
	}
	if cfg.AttemptTTL <= 0 {
		cfg.AttemptTTL = 30 * time.Minute
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CheckoutService{
		orders:   orders,
		cart:     cart,
		sess:     sess,
		validate: validator.New(),
		cfg:      cfg,
		attempts: make(map[string]*Attempt),
	}
}

// Begin places an order for the current cart. Checkout is refused, without
// calling the backend, unless the cart is loaded and every line is
// available. The returned attempt carries the outcome; order creation
// failures are reported as a failed attempt, not as an error.
func (s *CheckoutService) Begin(ctx context.Context, req models.PlaceOrderRequest) (*Attempt, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	sess := s.sess.Snapshot()
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if !s.cart.CanCheckout() {
		return nil, ErrCheckoutBlocked
	}

	s.mu.Lock()
	now := s.cfg.Now()
	s.evictLocked(now)
	for _, a := range s.attempts {
		if a.State == StateCreatingOrder || a.State == StateVerifying {
			s.mu.Unlock()
			return nil, ErrCheckoutInProgress
		}
	}
	attempt := &Attempt{
		ID:            uuid.New().String(),
		State:         StateIdle,
		PaymentMethod: req.PaymentMethod,
		DeliveryNotes: req.DeliveryNotes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.attempts[attempt.ID] = attempt
	err := s.transitionLocked(attempt, StateCreatingOrder)
	s.unlock()
	if err != nil {
		return nil, err
	}

	res, placeErr := s.orders.Place(ctx, sess, req)

	s.mu.Lock()
	if placeErr != nil {
		log.Printf("Error placing %s order (attempt %s): %v", req.PaymentMethod, attempt.ID, placeErr)
		attempt.Message = orderFailureMessage(req.PaymentMethod, placeErr)
		return s.finishLocked(attempt, StateFailed)
	}

	attempt.TransactionNumber = res.TransactionNumber
	attempt.OrderNumber = res.FirstOrderNumber()

	if req.PaymentMethod == models.PaymentCOD {
		if err := s.transitionLocked(attempt, StateCODSubmitted); err != nil {
			s.unlock()
			return nil, err
		}
		attempt.Message = fmt.Sprintf("Order placed successfully! Order Number: %s, Transaction: %s. Payment: Cash on Delivery",
			attempt.OrderNumber, attempt.TransactionNumber)
		out, err := s.finishLocked(attempt, StateCompleted)
		if err == nil {
			s.refreshCart(ctx)
		}
		return out, err
	}

	if res.Gateway == nil || res.Gateway.OrderID == "" {
		attempt.Message = "Payment gateway order ID not received from server"
		return s.finishLocked(attempt, StateFailed)
	}
	attempt.Gateway = &GatewayCheckout{
		GatewayOrder: *res.Gateway,
		Notes: map[string]string{
			"transaction_number": attempt.TransactionNumber,
			"order_number":       attempt.OrderNumber,
		},
	}
	return s.finishLocked(attempt, StateAwaitingGateway)
}

func orderFailureMessage(method models.PaymentMethod, err error) string {
	if restclient.IsNetwork(err) {
		if method == models.PaymentCOD {
			return "Error placing order. Please try again."
		}
		return "Error initiating payment. Please try again."
	}
	if method == models.PaymentCOD {
		return "Failed to place order: " + restclient.Message(err)
	}
	return "Failed to create order: " + restclient.Message(err)
}

// Resolve applies the hosted widget's outcome to an attempt awaiting it.
// A successful payment completes the attempt even when the backend can not
// verify it; Verified tells the two cases apart.
func (s *CheckoutService) Resolve(ctx context.Context, attemptID string, result GatewayResult) (*Attempt, error) {
	if err := validateStruct(s.validate, result); err != nil {
		return nil, err
	}

	s.mu.Lock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrAttemptNotFound
	}
	if attempt.State != StateAwaitingGateway {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s while %s", ErrInvalidTransition, result.Outcome, attempt.State)
	}

	switch result.Outcome {
	case GatewayFailed:
		attempt.Message = fmt.Sprintf("Payment failed: %s. Transaction: %s. Please try again or contact support.",
			result.ErrorDescription, attempt.TransactionNumber)
		return s.finishLocked(attempt, StateFailed)
	case GatewayDismissed:
		attempt.Message = "Payment cancelled. Your order has been saved but not confirmed. Transaction: " + attempt.TransactionNumber
		return s.finishLocked(attempt, StateCancelled)
	}

	if result.OrderID == "" && attempt.Gateway != nil {
		result.OrderID = attempt.Gateway.OrderID
	}
	verify := models.VerifyPaymentRequest{
		GatewayOrderID:   result.OrderID,
		GatewayPaymentID: result.PaymentID,
		GatewaySignature: result.Signature,
	}
	if err := validateStruct(s.validate, verify); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	attempt.PaymentID = result.PaymentID
	if err := s.transitionLocked(attempt, StateVerifying); err != nil {
		s.unlock()
		return nil, err
	}
	s.unlock()

	verifyErr := s.orders.VerifyPayment(ctx, s.sess.Snapshot(), verify)

	s.mu.Lock()
	attempt.Verified = verifyErr == nil
	if verifyErr != nil {
		log.Printf("Payment verification failed for attempt %s, leaving it to the webhook: %v", attempt.ID, verifyErr)
		attempt.Message = fmt.Sprintf("Payment completed! Order Number: %s, Transaction: %s, Payment ID: %s. Your order has been confirmed! Status will be updated shortly.",
			attempt.OrderNumber, attempt.TransactionNumber, attempt.PaymentID)
	} else {
		attempt.Message = fmt.Sprintf("Payment successful! Order Number: %s, Transaction: %s, Payment ID: %s. Your order has been confirmed!",
			attempt.OrderNumber, attempt.TransactionNumber, attempt.PaymentID)
	}
	attempt.RedirectTo = OrdersPath
	attempt.RedirectAfter = s.cfg.RedirectDelay
	out, err := s.finishLocked(attempt, StateCompleted)
	if err != nil {
		return nil, err
	}

	s.refreshCart(ctx)
	if s.cfg.Navigator != nil {
		navigate := s.cfg.Navigator
		s.cfg.Scheduler(s.cfg.RedirectDelay, func() { navigate(OrdersPath) })
	}
	return out, nil
}

// finishLocked moves a to state, copies it and releases s.mu.
func (s *CheckoutService) finishLocked(a *Attempt, to CheckoutState) (*Attempt, error) {
	defer s.unlock()
	if err := s.transitionLocked(a, to); err != nil {
		return nil, err
	}
	return a.clone(), nil
}

// Attempt returns a copy of an attempt.
func (s *CheckoutService) Attempt(id string) (*Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return attempt.clone(), nil
}

func (s *CheckoutService) refreshCart(ctx context.Context) {
	if err := s.cart.Fetch(ctx); err != nil {
		log.Printf("Cart refetch after checkout failed: %v", err)
	}
}

// unlock releases s.mu and then publishes the events raised while it was
// held, so a slow broker never blocks other attempts.
func (s *CheckoutService) unlock() {
	events := s.outbox
	s.outbox = nil
	s.mu.Unlock()
	for _, event := range events {
		if err := s.cfg.Publisher.PublishCheckoutEvent(event); err != nil {
			log.Printf("Error publishing %s for attempt %s: %v", event.Type, event.AttemptID, err)
		}
	}
}

// evictLocked drops finished attempts not updated within the TTL.
func (s *CheckoutService) evictLocked(now time.Time) {
	for id, a := range s.attempts {
		if a.State.Terminal() && now.Sub(a.UpdatedAt) > s.cfg.AttemptTTL {
			delete(s.attempts, id)
		}
	}
}

func (s *CheckoutService) transitionLocked(a *Attempt, to CheckoutState) error {
	if !CanTransition(a.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.State, to)
	}
	a.State = to
	a.UpdatedAt = s.cfg.Now()
	if s.cfg.Publisher != nil {
		s.outbox = append(s.outbox, checkoutEvent(a))
	}
	return nil
}

func checkoutEvent(a *Attempt) models.CheckoutEvent {
	eventType := "checkout." + string(a.State)
	if a.State == StateCompleted && a.PaymentMethod == models.PaymentOnline && !a.Verified {
		eventType = "checkout.completed_unverified"
	}
	return models.CheckoutEvent{
		Type:              eventType,
		AttemptID:         a.ID,
		State:             string(a.State),
		PaymentMethod:     a.PaymentMethod,
		TransactionNumber: a.TransactionNumber,
		OrderNumber:       a.OrderNumber,
		PaymentID:         a.PaymentID,
		Verified:          a.Verified,
		Message:           a.Message,
		OccurredAt:        a.UpdatedAt,
	}
}

func (a *Attempt) clone() *Attempt {
	out := *a
	if a.Gateway != nil {
		g := *a.Gateway
		g.Notes = make(map[string]string, len(a.Gateway.Notes))
		for k, v := range a.Gateway.Notes {
			g.Notes[k] = v
		}
		out.Gateway = &g
	}
	return &out
}
