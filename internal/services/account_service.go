package services

import (
	"context"
	"fmt"

	"ilbmart/internal/models"
	"ilbmart/internal/repositories"
	"ilbmart/internal/session"
)

// AccountService backs the profile page sections.
type AccountService struct {
	users    repositories.UserRepository
	orders   repositories.OrderRepository
	wishlist repositories.WishlistRepository
	cart     *CartService
	sess     *session.Session
}

// NewAccountService creates a new AccountService.
func NewAccountService(users repositories.UserRepository, orders repositories.OrderRepository, wishlist repositories.WishlistRepository, cart *CartService, sess *session.Session) *AccountService {
	return &AccountService{
		users:    users,
		orders:   orders,
		wishlist: wishlist,
		cart:     cart,
		sess:     sess,
	}
}

func (s *AccountService) session() (models.Session, error) {
	sess := s.sess.Snapshot()
	if !sess.LoggedIn() {
		return sess, ErrNotLoggedIn
	}
	return sess, nil
}

// Profile returns the customer profile.
func (s *AccountService) Profile(ctx context.Context) (*models.UserProfile, error) {
	sess, err := s.session()
	if err != nil {
		return nil, err
	}
	return s.users.Profile(ctx, sess)
}

// CurrentOrders lists in-progress orders.
func (s *AccountService) CurrentOrders(ctx context.Context) ([]models.OrderSummary, error) {
	sess, err := s.session()
	if err != nil {
		return nil, err
	}
	return s.orders.Current(ctx, sess)
}

// OrderHistory lists past orders.
func (s *AccountService) OrderHistory(ctx context.Context) ([]models.OrderSummary, error) {
	sess, err := s.session()
	if err != nil {
		return nil, err
	}
	return s.orders.History(ctx, sess)
}

// Wishlist lists saved products.
func (s *AccountService) Wishlist(ctx context.Context) ([]models.WishlistItem, error) {
	sess, err := s.session()
	if err != nil {
		return nil, err
	}
	return s.wishlist.List(ctx, sess)
}

// AddToWishlist saves a product.
func (s *AccountService) AddToWishlist(ctx context.Context, sellerProductID int64) error {
	sess, err := s.session()
	if err != nil {
		return err
	}
	return s.wishlist.Add(ctx, sess, sellerProductID)
}

// RemoveFromWishlist deletes a saved product.
func (s *AccountService) RemoveFromWishlist(ctx context.Context, wishlistID int64) error {
	sess, err := s.session()
	if err != nil {
		return err
	}
	return s.wishlist.Remove(ctx, sess, wishlistID)
}

// MoveWishlistItemToCart adds one unit of a saved product to the cart. Only
// available items can be moved; the wishlist entry is kept.
func (s *AccountService) MoveWishlistItemToCart(ctx context.Context, wishlistID int64) error {
	items, err := s.Wishlist(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.WishlistID != wishlistID {
			continue
		}
		if !item.IsAvailable {
			return ErrItemUnavailable
		}
		return s.cart.AddItem(ctx, item.SellerProductID, 1)
	}
	return fmt.Errorf("wishlist item %d: %w", wishlistID, repositories.ErrNotFound)
}
