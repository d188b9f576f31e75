package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"ilbmart/internal/models"
	"ilbmart/internal/repositories"
	"ilbmart/internal/session"
	"ilbmart/pkg/restclient"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// CartView is what the cart page renders.
type CartView struct {
	State                ViewState
	Cart                 *models.CartData
	Tip                  decimal.Decimal
	Updating             bool
	CanCheckout          bool
	FreeDeliveryProgress float64
}

// CartService is the cart view-model. Mutations are serialized; every
// successful mutation is followed by exactly one refetch.
type CartService struct {
	repo     repositories.CartRepository
	sess     *session.Session
	validate *validator.Validate

	mutation sync.Mutex

	mu         sync.RWMutex
	cart       *models.CartData
	loading    bool
	updating   bool
	errMsg     string
	tip        decimal.Decimal
	generation uint64
}

// NewCartService creates a new CartService.
func NewCartService(repo repositories.CartRepository, sess *session.Session) *CartService {
	return &CartService{
		repo:     repo,
		sess:     sess,
		validate: validator.New(),
	}
}

// Fetch loads the cart snapshot. A response older than the latest request
// is discarded.
func (s *CartService) Fetch(ctx context.Context) error {
	sess := s.sess.Snapshot()
	if !sess.LoggedIn() {
		return ErrNotLoggedIn
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	cart, err := s.repo.Get(ctx, sess)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	s.loading = false
	if err != nil {
		log.Printf("Error fetching cart: %v", err)
		s.errMsg = restclient.Message(err)
		s.cart = nil
		return err
	}
	s.errMsg = ""
	s.cart = cart
	s.cart.Summary.ApplyTip(s.tip)
	return nil
}

// mutate runs fn in the cart's single mutation slot and refetches on success.
func (s *CartService) mutate(ctx context.Context, op string, fn func(sess models.Session) error) error {
	sess := s.sess.Snapshot()
	if !sess.LoggedIn() {
		return ErrNotLoggedIn
	}

	s.mutation.Lock()
	defer s.mutation.Unlock()
	s.setUpdating(true)
	defer s.setUpdating(false)

	if err := fn(sess); err != nil {
		if restclient.IsNetwork(err) {
			log.Printf("Cart %s failed: %v", op, err)
		}
		return err
	}
	if err := s.Fetch(ctx); err != nil {
		log.Printf("Cart refetch after %s failed: %v", op, err)
	}
	return nil
}

func (s *CartService) setUpdating(v bool) {
	s.mu.Lock()
	s.updating = v
	s.mu.Unlock()
}

// AddItem adds qty units of a product.
func (s *CartService) AddItem(ctx context.Context, sellerProductID int64, qty int) error {
	req := models.AddToCartRequest{SellerProductID: sellerProductID, Quantity: qty}
	if err := validateStruct(s.validate, req); err != nil {
		return err
	}
	return s.mutate(ctx, "add", func(sess models.Session) error {
		return s.repo.Add(ctx, sess, req)
	})
}

// UpdateQuantity sets a line's quantity. Quantities below 1 are rejected
// without calling the backend.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID int64, qty int) error {
	if err := validateStruct(s.validate, models.UpdateQuantityRequest{Quantity: qty}); err != nil {
		return err
	}
	return s.mutate(ctx, "update quantity", func(sess models.Session) error {
		return s.repo.UpdateQuantity(ctx, sess, cartID, qty)
	})
}

// RemoveItem deletes a line.
func (s *CartService) RemoveItem(ctx context.Context, cartID int64) error {
	return s.mutate(ctx, "remove item", func(sess models.Session) error {
		return s.repo.Remove(ctx, sess, cartID)
	})
}

// RemoveAll empties the cart. When the backend rejects the clear-all call,
// every line is deleted individually and concurrently; failures of single
// deletes are ignored.
func (s *CartService) RemoveAll(ctx context.Context) error {
	return s.mutate(ctx, "remove all", func(sess models.Session) error {
		err := s.repo.Clear(ctx, sess)
		if err == nil || !restclient.IsHTTP(err) {
			return err
		}
		log.Printf("Clear-all rejected (status %d), removing items one by one", restclient.StatusCode(err))

		var g errgroup.Group
		for _, item := range s.currentItems() {
			cartID := item.CartID
			g.Go(func() error {
				if err := s.repo.Remove(ctx, sess, cartID); err != nil && restclient.IsNetwork(err) {
					log.Printf("Cart remove item %d failed: %v", cartID, err)
				}
				return nil
			})
		}
		return g.Wait()
	})
}

func (s *CartService) currentItems() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cart == nil {
		return nil
	}
	return append([]models.CartItem(nil), s.cart.Items...)
}

// ApplyCoupon applies a coupon code. A blank code is rejected locally.
func (s *CartService) ApplyCoupon(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCoupon
	}
	err := s.mutate(ctx, "apply coupon", func(sess models.Session) error {
		return s.repo.ApplyCoupon(ctx, sess, code)
	})
	if err != nil {
		return fmt.Errorf("failed to apply coupon: %w", err)
	}
	return nil
}

// SetTip changes the delivery tip. The tip only affects the displayed total
// and is never sent to the backend.
func (s *CartService) SetTip(tip float64) error {
	if err := validateStruct(s.validate, models.TipRequest{Tip: tip}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tip = decimal.NewFromFloat(tip)
	if s.cart != nil {
		s.cart.Summary.ApplyTip(s.tip)
	}
	return nil
}

// CanCheckout reports whether a snapshot is loaded, non-empty and has no
// unavailable line.
func (s *CartService) CanCheckout() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canCheckout()
}

func (s *CartService) canCheckout() bool {
	return s.cart != nil && !s.cart.IsEmpty() && !s.cart.HasUnavailable()
}

// Reset forgets the snapshot, e.g. after logout.
func (s *CartService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cart = nil
	s.loading = false
	s.errMsg = ""
	s.tip = decimal.Zero
}

// View returns the cart page state.
func (s *CartService) View() CartView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view := CartView{
		Tip:         s.tip,
		Updating:    s.updating,
		CanCheckout: s.canCheckout(),
		Cart:        s.cart.Clone(),
	}
	switch {
	case s.loading && s.cart == nil:
		view.State = Loading{Skeletons: 1}
	case s.errMsg != "":
		view.State = Failed{Message: s.errMsg}
	case s.cart == nil:
		view.State = Loading{Skeletons: 1}
	case s.cart.IsEmpty():
		view.State = Empty{}
	default:
		view.State = Loaded[models.CartItem]{Items: append([]models.CartItem(nil), s.cart.Items...)}
	}
	if s.cart != nil {
		view.FreeDeliveryProgress = s.cart.FreeDeliveryProgress()
	}
	return view
}
