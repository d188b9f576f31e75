package restclient

import (
	"errors"
	"fmt"
)

// ErrMaxRetriesExceeded is wrapped when a retried GET keeps failing.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

// NetworkError means the request never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response. Message is the server supplied message,
// when the body carried one.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// AppError is a 2xx response whose body reports {success:false}.
type AppError struct {
	Method  string
	Path    string
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: request unsuccessful", e.Method, e.Path)
}

// Message extracts the text that should be shown to a customer: the server
// message when there is one, otherwise the error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsHTTP reports whether err is a non-2xx response.
func IsHTTP(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// IsApp reports whether err is a {success:false} response.
func IsApp(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func retryable(err error) bool {
	if IsNetwork(err) {
		return true
	}
	return StatusCode(err) >= 500
}
