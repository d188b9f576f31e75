package services

import (
	"context"
	"fmt"
	"sync"

	"ilbmart/internal/models"
	"ilbmart/internal/repositories"
	"ilbmart/internal/session"
)

// Names of the fixed home page listings.
const (
	ListingTrending   = "trending"
	ListingPriceSaver = "price-saver"
)

// SubcategoryView is a category page: its subcategories and the one shown
// first.
type SubcategoryView struct {
	CategoryID    int64                `json:"category_id"`
	Subcategories []models.Subcategory `json:"subcategories"`
	Selected      *models.Subcategory  `json:"selected"`
}

// CatalogService owns the catalog listings.
type CatalogService struct {
	repo     repositories.CatalogRepository
	sess     *session.Session
	pageSize int

	listings map[string]*Listing[models.Product]

	// Only the subcategory being browsed follows pincode changes.
	mu            sync.Mutex
	subcategoryID int64
	subcategory   *Listing[models.Product]
}

// NewCatalogService creates a new CatalogService with the trending and
// price-saver listings.
func NewCatalogService(repo repositories.CatalogRepository, sess *session.Session, pageSize int) *CatalogService {
	s := &CatalogService{
		repo:     repo,
		sess:     sess,
		pageSize: pageSize,
	}
	s.listings = map[string]*Listing[models.Product]{
		ListingTrending:   NewListing[models.Product](ListingTrending, sess, pageSize, repo.Trending),
		ListingPriceSaver: NewListing[models.Product](ListingPriceSaver, sess, pageSize, repo.PriceSaver),
	}
	return s
}

// Listing returns a named listing.
func (s *CatalogService) Listing(name string) (*Listing[models.Product], error) {
	l, ok := s.listings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownListing, name)
	}
	return l, nil
}

// SubcategoryListing returns the product listing of a subcategory. Switching
// to another subcategory closes the previous listing, so at most one
// subcategory reloads on a pincode change.
func (s *CatalogService) SubcategoryListing(subcategoryID int64) *Listing[models.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subcategory != nil && s.subcategoryID == subcategoryID {
		return s.subcategory
	}
	if s.subcategory != nil {
		s.subcategory.Close()
	}
	name := fmt.Sprintf("subcategory-%d", subcategoryID)
	s.subcategoryID = subcategoryID
	s.subcategory = NewListing[models.Product](name, s.sess, s.pageSize, func(ctx context.Context, sess models.Session, page models.PageRequest) ([]models.Product, error) {
		return s.repo.SubcategoryProducts(ctx, sess, subcategoryID, page)
	})
	return s.subcategory
}

// Categories returns all categories.
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.Categories(ctx, s.sess.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

// Subcategories returns a category's subcategories with the first one
// selected.
func (s *CatalogService) Subcategories(ctx context.Context, categoryID int64) (*SubcategoryView, error) {
	subs, err := s.repo.Subcategories(ctx, s.sess.Snapshot(), categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subcategories: %w", err)
	}
	view := &SubcategoryView{CategoryID: categoryID, Subcategories: subs}
	if len(subs) > 0 {
		first := subs[0]
		view.Selected = &first
	}
	return view, nil
}

// Product returns a product's detail page.
func (s *CatalogService) Product(ctx context.Context, id string) (*models.ProductDetail, error) {
	product, err := s.repo.Product(ctx, s.sess.Snapshot(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

// Close unsubscribes every listing from pincode changes.
func (s *CatalogService) Close() {
	for _, l := range s.listings {
		l.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subcategory != nil {
		s.subcategory.Close()
		s.subcategory = nil
	}
}
