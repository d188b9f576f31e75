package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrCheckoutBlocked    = errors.New("checkout blocked: cart not loaded, empty or has unavailable items")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrInvalidTransition  = errors.New("invalid checkout state transition")
	ErrAttemptNotFound    = errors.New("checkout attempt not found")
	ErrEmptyCoupon        = errors.New("please enter a coupon code")
	ErrUnknownListing     = errors.New("unknown listing")
	ErrItemUnavailable    = errors.New("item is not available at your pincode")
	ErrOTPNotRequested    = errors.New("request an OTP first")
)

// ValidationError is a client-side validation failure. Fields maps the
// offending field to a description.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validateStruct runs the validator tags on s.
func validateStruct(v *validator.Validate, s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(validationErrors))}
	for _, e := range validationErrors {
		out.Fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return out
}
