package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"ilbmart/internal/repositories"
	"ilbmart/internal/services"
	"ilbmart/pkg/restclient"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError translates a service error into a status and a
// {"message": ...} body. All handlers report errors through it.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"message": fiberErr.Message,
		})
	}

	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": messageFor(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrEmptyCoupon), errors.Is(err, services.ErrOTPNotRequested):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrAttemptNotFound), errors.Is(err, services.ErrUnknownListing), errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrCheckoutBlocked), errors.Is(err, services.ErrCheckoutInProgress),
		errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrItemUnavailable):
		return fiber.StatusConflict
	case restclient.IsNetwork(err):
		return fiber.StatusBadGateway
	case restclient.IsApp(err):
		return fiber.StatusUnprocessableEntity
	case restclient.IsHTTP(err):
		if code := restclient.StatusCode(err); code >= 400 && code < 500 {
			return code
		}
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func messageFor(err error) string {
	switch {
	case restclient.IsNetwork(err):
		return "Network error. Please check your connection."
	case errors.Is(err, services.ErrEmptyCoupon):
		return "Please enter a coupon code"
	case restclient.IsHTTP(err), restclient.IsApp(err):
		if msg := restclient.Message(err); msg != "" {
			return msg
		}
		return http.StatusText(restclient.StatusCode(err))
	default:
		return err.Error()
	}
}

// renderState is the single place a ViewState becomes JSON.
func renderState[T any](state services.ViewState) fiber.Map {
	switch s := state.(type) {
	case services.Loading:
		return fiber.Map{"status": "loading", "skeletons": s.Skeletons}
	case services.Failed:
		return fiber.Map{"status": "error", "message": s.Message}
	case services.Empty:
		return fiber.Map{"status": "empty", "items": []T{}}
	case services.Loaded[T]:
		return fiber.Map{"status": "loaded", "items": s.Items}
	default:
		log.Printf("Unhandled view state %T", state)
		return fiber.Map{"status": "error", "message": "unavailable"}
	}
}

func invalidBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing %s %s request body: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return int64(id), nil
}

// validateRequest checks a request body before it reaches a service.
func validateRequest(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &services.ValidationError{Fields: errorMessages}
}
