package handlers

import (
	"ilbmart/internal/models"
	"ilbmart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler serves the profile page sections.
type AccountHandler struct {
	accountService *services.AccountService
	validate       *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the account routes. The router is expected to
// require a session.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	accountRoutes := router.Group("/account")
	accountRoutes.Get("/profile", h.HandleProfile)
	accountRoutes.Get("/orders/current", h.HandleCurrentOrders)
	accountRoutes.Get("/orders/history", h.HandleOrderHistory)
	accountRoutes.Get("/wishlist", h.HandleWishlist)
	accountRoutes.Post("/wishlist", h.HandleAddToWishlist)
	accountRoutes.Delete("/wishlist/:id", h.HandleRemoveFromWishlist)
	accountRoutes.Post("/wishlist/:id/cart", h.HandleMoveToCart)
}

// HandleProfile returns the logged-in user's profile.
func (h *AccountHandler) HandleProfile(c *fiber.Ctx) error {
	profile, err := h.accountService.Profile(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// HandleCurrentOrders lists orders still in progress.
func (h *AccountHandler) HandleCurrentOrders(c *fiber.Ctx) error {
	orders, err := h.accountService.CurrentOrders(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(renderState[models.OrderSummary](ordersState(orders)))
}

// HandleOrderHistory lists past orders.
func (h *AccountHandler) HandleOrderHistory(c *fiber.Ctx) error {
	orders, err := h.accountService.OrderHistory(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(renderState[models.OrderSummary](ordersState(orders)))
}

func ordersState(orders []models.OrderSummary) services.ViewState {
	if len(orders) == 0 {
		return services.Empty{}
	}
	return services.Loaded[models.OrderSummary]{Items: orders}
}

// HandleWishlist lists saved products.
func (h *AccountHandler) HandleWishlist(c *fiber.Ctx) error {
	items, err := h.accountService.Wishlist(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	var state services.ViewState = services.Empty{}
	if len(items) > 0 {
		state = services.Loaded[models.WishlistItem]{Items: items}
	}
	return c.JSON(renderState[models.WishlistItem](state))
}

// HandleAddToWishlist saves a product.
func (h *AccountHandler) HandleAddToWishlist(c *fiber.Ctx) error {
	var req models.WishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := validateRequest(h.validate, req); err != nil {
		return respondError(c, err)
	}
	if err := h.accountService.AddToWishlist(c.UserContext(), req.SellerProductID); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Added to wishlist",
	})
}

// HandleRemoveFromWishlist drops a saved product.
func (h *AccountHandler) HandleRemoveFromWishlist(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.accountService.RemoveFromWishlist(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Removed from wishlist",
	})
}

// HandleMoveToCart adds one unit of a saved product to the cart.
func (h *AccountHandler) HandleMoveToCart(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.accountService.MoveWishlistItemToCart(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Added to cart",
	})
}
