package handlers

import (
	"log"

	"ilbmart/internal/models"
	"ilbmart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the cart page.
type CartHandler struct {
	cartService *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes registers the cart routes. The router is expected to
// require a session.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:id", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
	cartRoutes.Delete("/items", h.HandleRemoveAll)
	cartRoutes.Post("/coupon", h.HandleApplyCoupon)
	cartRoutes.Put("/tip", h.HandleSetTip)
}

func cartJSON(view services.CartView) fiber.Map {
	out := renderState[models.CartItem](view.State)
	out["tip"] = view.Tip
	out["updating"] = view.Updating
	out["can_checkout"] = view.CanCheckout
	out["free_delivery_progress"] = view.FreeDeliveryProgress
	if view.Cart != nil {
		out["summary"] = view.Cart.Summary
		out["free_delivery_threshold"] = view.Cart.FreeDeliveryThreshold
		out["amount_needed_for_free_delivery"] = view.Cart.AmountNeededForFreeDelivery
		out["delivery_address_id"] = view.Cart.DeliveryAddressID
	}
	return out
}

// HandleGetCart refetches the cart and returns the page state. A failed
// fetch is still rendered, with the error state.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	if err := h.cartService.Fetch(c.UserContext()); err != nil {
		return c.Status(statusFor(err)).JSON(cartJSON(h.cartService.View()))
	}
	return c.JSON(cartJSON(h.cartService.View()))
}

// HandleAddItem adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req models.AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.cartService.AddItem(c.UserContext(), req.SellerProductID, req.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cartJSON(h.cartService.View()))
}

// HandleUpdateQuantity sets a cart line's quantity.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	cartID, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req models.UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.cartService.UpdateQuantity(c.UserContext(), cartID, req.Quantity); err != nil {
		return respondError(c, err)
	}
	return c.JSON(cartJSON(h.cartService.View()))
}

// HandleRemoveItem deletes a cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cartID, err := paramID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.cartService.RemoveItem(c.UserContext(), cartID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(cartJSON(h.cartService.View()))
}

// HandleRemoveAll empties the cart.
func (h *CartHandler) HandleRemoveAll(c *fiber.Ctx) error {
	if err := h.cartService.RemoveAll(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(cartJSON(h.cartService.View()))
}

// HandleApplyCoupon applies a coupon code to the cart.
func (h *CartHandler) HandleApplyCoupon(c *fiber.Ctx) error {
	var req models.CouponRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.cartService.ApplyCoupon(c.UserContext(), req.CouponCode); err != nil {
		log.Printf("Error applying coupon: %v", err)
		return respondError(c, err)
	}
	out := cartJSON(h.cartService.View())
	out["message"] = "Coupon applied successfully!"
	return c.JSON(out)
}

// HandleSetTip changes the display-only delivery tip.
func (h *CartHandler) HandleSetTip(c *fiber.Ctx) error {
	var req models.TipRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.cartService.SetTip(req.Tip); err != nil {
		return respondError(c, err)
	}
	return c.JSON(cartJSON(h.cartService.View()))
}
