package repositories

import (
	"context"

	"ilbmart/internal/models"
)

// CatalogRepository reads the public, pincode-scoped catalog.
type CatalogRepository interface {
	Categories(ctx context.Context, sess models.Session) ([]models.Category, error)
	Subcategories(ctx context.Context, sess models.Session, categoryID int64) ([]models.Subcategory, error)
	SubcategoryProducts(ctx context.Context, sess models.Session, subcategoryID int64, page models.PageRequest) ([]models.Product, error)
	Trending(ctx context.Context, sess models.Session, page models.PageRequest) ([]models.Product, error)
	PriceSaver(ctx context.Context, sess models.Session, page models.PageRequest) ([]models.Product, error)
	Product(ctx context.Context, sess models.Session, id string) (*models.ProductDetail, error)
}
