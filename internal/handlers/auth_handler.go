package handlers

import (
	"ilbmart/internal/services"

	"github.com/gofiber/fiber/v2"
)

type otpBody struct {
	Mobile string `json:"mobile"`
}

type verifyBody struct {
	OTP string `json:"otp"`
}

// AuthHandler handles the OTP login page.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Get("/", h.HandleState)
	authRoutes.Post("/otp", h.HandleRequestOTP)
	authRoutes.Post("/verify", h.HandleVerifyOTP)
	authRoutes.Post("/change-mobile", h.HandleChangeMobile)
}

// HandleState returns the login page state.
func (h *AuthHandler) HandleState(c *fiber.Ctx) error {
	return c.JSON(h.authService.State())
}

// HandleRequestOTP sends an OTP to the given mobile number. Backend
// failures are reported inside the login state, not as an error status.
func (h *AuthHandler) HandleRequestOTP(c *fiber.Ctx) error {
	var body otpBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, err)
	}
	state, err := h.authService.RequestOTP(c.UserContext(), body.Mobile)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// HandleVerifyOTP exchanges the OTP for a session token.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var body verifyBody
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, err)
	}
	state, err := h.authService.VerifyOTP(c.UserContext(), body.OTP)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// HandleChangeMobile returns the login page to mobile entry.
func (h *AuthHandler) HandleChangeMobile(c *fiber.Ctx) error {
	return c.JSON(h.authService.ChangeMobile())
}
