package handlers

import (
	"ilbmart/internal/models"
	"ilbmart/internal/services"
	"ilbmart/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// SessionHandler exposes the client session: pincode and logout.
type SessionHandler struct {
	sess        *session.Session
	authService *services.AuthService
	cartService *services.CartService
	validate    *validator.Validate
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sess *session.Session, authService *services.AuthService, cartService *services.CartService) *SessionHandler {
	return &SessionHandler{
		sess:        sess,
		authService: authService,
		cartService: cartService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the session routes with the Fiber app.
func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	sessionRoutes := router.Group("/session")
	sessionRoutes.Get("/", h.HandleGetSession)
	sessionRoutes.Put("/pincode", h.HandleSetPincode)
	sessionRoutes.Post("/logout", h.HandleLogout)
}

// HandleGetSession reports whether a user is logged in and the current pincode.
func (h *SessionHandler) HandleGetSession(c *fiber.Ctx) error {
	snap := h.sess.Snapshot()
	return c.JSON(fiber.Map{
		"logged_in": snap.LoggedIn(),
		"pincode":   snap.Pincode,
	})
}

// HandleSetPincode changes the delivery pincode. Every catalog listing
// reloads its first page before the response is written.
func (h *SessionHandler) HandleSetPincode(c *fiber.Ctx) error {
	var req models.PincodeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := validateRequest(h.validate, req); err != nil {
		return respondError(c, err)
	}
	if err := h.sess.SetPincode(c.UserContext(), req.Pincode); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Pincode updated",
		"pincode": req.Pincode,
	})
}

// HandleLogout drops the token and forgets the cart snapshot.
func (h *SessionHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	h.cartService.Reset()
	return c.JSON(fiber.Map{
		"message":     "Logged out",
		"redirect_to": "/login",
	})
}
