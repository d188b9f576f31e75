package repositories

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"

	"github.com/shopspring/decimal"
)

// MockProduct is a catalog entry of the in-memory backend.
type MockProduct struct {
	Detail        models.ProductDetail
	MRP           decimal.Decimal
	Unit          string
	SubcategoryID int64
	Trending      bool
	PriceSaver    bool
	// Pincodes limits where the product is sold; empty means everywhere.
	Pincodes []string
}

func (p MockProduct) id() int64 {
	id, _ := strconv.ParseInt(p.Detail.SellerProductID.String(), 10, 64)
	return id
}

func (p MockProduct) servedIn(pincode string) bool {
	if len(p.Pincodes) == 0 || pincode == "" {
		return true
	}
	for _, pin := range p.Pincodes {
		if pin == pincode {
			return true
		}
	}
	return false
}

func (p MockProduct) card() models.Product {
	image := ""
	if len(p.Detail.Images) > 0 {
		image = p.Detail.Images[0]
	}
	return models.Product{
		SellerProductID: p.Detail.SellerProductID,
		Name:            p.Detail.Name,
		ImageURL:        image,
		Price: models.ProductPrice{
			MRP:       p.MRP,
			SalePrice: p.Detail.SalePrice,
			ActPrice:  p.Detail.ActPrice,
		},
		Rating: models.ProductRating{Average: models.FlexString(p.Detail.AverageRating.StringFixed(1))},
	}
}

// MockCatalogRepository is an in-memory implementation of CatalogRepository.
type MockCatalogRepository struct {
	categories    []models.Category
	subcategories []models.Subcategory
	products      []MockProduct
	mu            sync.RWMutex
}

// NewMockCatalogRepository creates a new instance of MockCatalogRepository.
func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{}
}

// AddCategory seeds a category.
func (r *MockCatalogRepository) AddCategory(c models.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, c)
}

// AddSubcategory seeds a subcategory.
func (r *MockCatalogRepository) AddSubcategory(s models.Subcategory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subcategories = append(r.subcategories, s)
}

// AddProduct seeds a product.
func (r *MockCatalogRepository) AddProduct(p MockProduct) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, p)
}

// Lookup returns the product with the given seller product id.
func (r *MockCatalogRepository) Lookup(id int64) (MockProduct, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.id() == id {
			return p, true
		}
	}
	return MockProduct{}, false
}

// Categories returns all categories.
func (r *MockCatalogRepository) Categories(_ context.Context, _ models.Session) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Category{}, r.categories...), nil
}

// Subcategories returns the subcategories of a category.
func (r *MockCatalogRepository) Subcategories(_ context.Context, _ models.Session, categoryID int64) ([]models.Subcategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Subcategory{}
	for _, s := range r.subcategories {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

// SubcategoryProducts pages through a subcategory.
func (r *MockCatalogRepository) SubcategoryProducts(_ context.Context, sess models.Session, subcategoryID int64, page models.PageRequest) ([]models.Product, error) {
	return r.page(sess, page, func(p MockProduct) bool { return p.SubcategoryID == subcategoryID }), nil
}

// Trending pages through the trending products.
func (r *MockCatalogRepository) Trending(_ context.Context, sess models.Session, page models.PageRequest) ([]models.Product, error) {
	return r.page(sess, page, func(p MockProduct) bool { return p.Trending }), nil
}

// PriceSaver pages through the price-saver products.
func (r *MockCatalogRepository) PriceSaver(_ context.Context, sess models.Session, page models.PageRequest) ([]models.Product, error) {
	return r.page(sess, page, func(p MockProduct) bool { return p.PriceSaver }), nil
}

// Product returns a product's detail with related products from the same
// subcategory.
func (r *MockCatalogRepository) Product(_ context.Context, sess models.Session, id string) (*models.ProductDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.Detail.SellerProductID.String() != id || !p.servedIn(sess.Pincode) {
			continue
		}
		detail := p.Detail
		detail.RelatedProducts = nil
		for _, other := range r.products {
			if other.SubcategoryID == p.SubcategoryID && other.id() != p.id() && other.servedIn(sess.Pincode) {
				detail.RelatedProducts = append(detail.RelatedProducts, other.Detail)
			}
		}
		return &detail, nil
	}
	return nil, &restclient.HTTPError{Method: "GET", Path: "/public/products/" + id, StatusCode: 404, Message: fmt.Sprintf("Product %s not found", id)}
}

func (r *MockCatalogRepository) page(sess models.Session, page models.PageRequest, match func(MockProduct) bool) []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []models.Product
	for _, p := range r.products {
		if match(p) && p.servedIn(sess.Pincode) {
			all = append(all, p.card())
		}
	}
	out := []models.Product{}
	if page.Offset >= len(all) {
		return out
	}
	end := len(all)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return append(out, all[page.Offset:end]...)
}
