package handlers

import (
	"context"

	"ilbmart/internal/models"
	"ilbmart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves categories, product detail and the paginated
// product listings.
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	catalogRoutes := router.Group("/catalog")
	catalogRoutes.Get("/categories", h.HandleCategories)
	catalogRoutes.Get("/categories/:id/subcategories", h.HandleSubcategories)
	catalogRoutes.Get("/products/:id", h.HandleProduct)

	catalogRoutes.Get("/listings/:name", h.HandleListing)
	catalogRoutes.Post("/listings/:name/next", h.HandleListingNext)
	catalogRoutes.Post("/listings/:name/prev", h.HandleListingPrev)

	catalogRoutes.Get("/subcategories/:id/products", h.HandleSubcategoryProducts)
	catalogRoutes.Post("/subcategories/:id/products/next", h.HandleSubcategoryNext)
	catalogRoutes.Post("/subcategories/:id/products/prev", h.HandleSubcategoryPrev)
}

func listingJSON(snap services.ListingSnapshot[models.Product]) fiber.Map {
	out := renderState[models.Product](snap.State)
	out["name"] = snap.Name
	out["page"] = snap.Page
	out["page_size"] = snap.PageSize
	out["has_more"] = snap.HasMore
	out["loading"] = snap.Loading
	return out
}

// HandleCategories returns every category.
func (h *CatalogHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.catalogService.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return c.JSON(fiber.Map{"categories": categories})
}

// HandleSubcategories returns a category's subcategories, the first one
// selected.
func (h *CatalogHandler) HandleSubcategories(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	view, err := h.catalogService.Subcategories(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if view.Subcategories == nil {
		view.Subcategories = []models.Subcategory{}
	}
	return c.JSON(view)
}

// HandleProduct returns a product detail page.
func (h *CatalogHandler) HandleProduct(c *fiber.Ctx) error {
	product, err := h.catalogService.Product(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleListing loads a listing on first visit and returns its current page.
// Fetch failures are shown through the listing's error state.
func (h *CatalogHandler) HandleListing(c *fiber.Ctx) error {
	listing, err := h.catalogService.Listing(c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	_ = listing.EnsureLoaded(c.UserContext())
	return c.JSON(listingJSON(listing.Snapshot()))
}

// HandleListingNext moves a listing forward one page.
func (h *CatalogHandler) HandleListingNext(c *fiber.Ctx) error {
	listing, err := h.catalogService.Listing(c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return h.page(c, listing, listing.Next)
}

// HandleListingPrev moves a listing back one page.
func (h *CatalogHandler) HandleListingPrev(c *fiber.Ctx) error {
	listing, err := h.catalogService.Listing(c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}
	return h.page(c, listing, listing.Prev)
}

// HandleSubcategoryProducts returns the products of a subcategory.
func (h *CatalogHandler) HandleSubcategoryProducts(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	listing := h.catalogService.SubcategoryListing(id)
	_ = listing.EnsureLoaded(c.UserContext())
	return c.JSON(listingJSON(listing.Snapshot()))
}

// HandleSubcategoryNext moves a subcategory listing forward one page.
func (h *CatalogHandler) HandleSubcategoryNext(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	listing := h.catalogService.SubcategoryListing(id)
	return h.page(c, listing, listing.Next)
}

// HandleSubcategoryPrev moves a subcategory listing back one page.
func (h *CatalogHandler) HandleSubcategoryPrev(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	listing := h.catalogService.SubcategoryListing(id)
	return h.page(c, listing, listing.Prev)
}

func (h *CatalogHandler) page(c *fiber.Ctx, listing *services.Listing[models.Product], move func(ctx context.Context) (bool, error)) error {
	moved, _ := move(c.UserContext())
	out := listingJSON(listing.Snapshot())
	out["moved"] = moved
	return c.JSON(out)
}
