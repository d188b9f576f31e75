package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"
)

// HTTPCatalogRepository reads the catalog from the /public endpoints.
type HTTPCatalogRepository struct {
	client *restclient.Client
}

// NewHTTPCatalogRepository creates a new HTTPCatalogRepository.
func NewHTTPCatalogRepository(client *restclient.Client) *HTTPCatalogRepository {
	return &HTTPCatalogRepository{client: client}
}

// Categories returns all top-level categories.
func (r *HTTPCatalogRepository) Categories(ctx context.Context, sess models.Session) ([]models.Category, error) {
	var resp struct {
		Categories json.RawMessage `json:"categories"`
	}
	const path = "/public/categories"
	if err := r.client.Get(ctx, path, publicScope(sess), &resp); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return decodeList[models.Category](path, resp.Categories)
}

// Subcategories returns the subcategories of a category.
func (r *HTTPCatalogRepository) Subcategories(ctx context.Context, sess models.Session, categoryID int64) ([]models.Subcategory, error) {
	var resp struct {
		Subcategories json.RawMessage `json:"subcategories"`
	}
	path := fmt.Sprintf("/public/categories/%d/subcategories", categoryID)
	if err := r.client.Get(ctx, path, publicScope(sess), &resp); err != nil {
		return nil, fmt.Errorf("failed to get subcategories of category %d: %w", categoryID, err)
	}
	return decodeList[models.Subcategory](path, resp.Subcategories)
}

// SubcategoryProducts returns one page of a subcategory's products.
func (r *HTTPCatalogRepository) SubcategoryProducts(ctx context.Context, sess models.Session, subcategoryID int64, page models.PageRequest) ([]models.Product, error) {
	var resp struct {
		Products json.RawMessage `json:"products"`
	}
	path := fmt.Sprintf("/public/subcategories/%d/products", subcategoryID)
	if err := r.client.Get(ctx, path+pageQuery(page), publicScope(sess), &resp); err != nil {
		if restclient.IsApp(err) {
			return []models.Product{}, nil
		}
		return nil, fmt.Errorf("failed to get products of subcategory %d: %w", subcategoryID, err)
	}
	return decodeList[models.Product](path, resp.Products)
}

// Trending returns one page of trending products. A {success:false} body is
// an empty page.
func (r *HTTPCatalogRepository) Trending(ctx context.Context, sess models.Session, page models.PageRequest) ([]models.Product, error) {
	var resp struct {
		Products json.RawMessage `json:"trendingProducts"`
	}
	const path = "/public/products/trending"
	if err := r.client.Get(ctx, path+pageQuery(page), publicScope(sess), &resp); err != nil {
		if restclient.IsApp(err) {
			return []models.Product{}, nil
		}
		return nil, fmt.Errorf("failed to get trending products: %w", err)
	}
	return decodeList[models.Product](path, resp.Products)
}

// PriceSaver returns one page of price-saver products. A {success:false}
// body is an empty page.
func (r *HTTPCatalogRepository) PriceSaver(ctx context.Context, sess models.Session, page models.PageRequest) ([]models.Product, error) {
	var resp struct {
		Products json.RawMessage `json:"priceSaverProducts"`
	}
	const path = "/public/products/price-saver"
	if err := r.client.Get(ctx, path+pageQuery(page), publicScope(sess), &resp); err != nil {
		if restclient.IsApp(err) {
			return []models.Product{}, nil
		}
		return nil, fmt.Errorf("failed to get price saver products: %w", err)
	}
	return decodeList[models.Product](path, resp.Products)
}

// Product returns a product's detail page.
func (r *HTTPCatalogRepository) Product(ctx context.Context, sess models.Session, id string) (*models.ProductDetail, error) {
	var resp struct {
		Product *models.ProductDetail `json:"product"`
	}
	path := "/public/products/" + url.PathEscape(id)
	if err := r.client.Get(ctx, path, publicScope(sess), &resp); err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	if resp.Product == nil {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return resp.Product, nil
}
