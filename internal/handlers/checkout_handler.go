package handlers

import (
	"strings"

	"ilbmart/internal/models"
	"ilbmart/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler drives checkout attempts. An online attempt stops in
// awaiting_gateway until the hosted widget's result is posted back.
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	defaultNotes    string
}

// NewCheckoutHandler creates a new CheckoutHandler. defaultNotes is used
// when an order is placed without delivery notes.
func NewCheckoutHandler(checkoutService *services.CheckoutService, defaultNotes string) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		defaultNotes:    defaultNotes,
	}
}

// RegisterRoutes registers the checkout routes. The router is expected to
// require a session.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Post("/", h.HandleBegin)
	checkoutRoutes.Get("/:id", h.HandleGetAttempt)
	checkoutRoutes.Post("/:id/result", h.HandleGatewayResult)
}

// HandleBegin places an order. Order creation failures come back as a
// failed attempt with the message to show.
func (h *CheckoutHandler) HandleBegin(c *fiber.Ctx) error {
	var req models.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if strings.TrimSpace(req.DeliveryNotes) == "" {
		req.DeliveryNotes = h.defaultNotes
	}
	attempt, err := h.checkoutService.Begin(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusCreated
	if attempt.State == services.StateFailed {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(attempt)
}

// HandleGetAttempt returns a checkout attempt.
func (h *CheckoutHandler) HandleGetAttempt(c *fiber.Ctx) error {
	attempt, err := h.checkoutService.Attempt(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(attempt)
}

// HandleGatewayResult applies the hosted widget's outcome to an attempt.
func (h *CheckoutHandler) HandleGatewayResult(c *fiber.Ctx) error {
	var result services.GatewayResult
	if err := c.BodyParser(&result); err != nil {
		return invalidBody(c, err)
	}
	attempt, err := h.checkoutService.Resolve(c.UserContext(), c.Params("id"), result)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(attempt)
}
