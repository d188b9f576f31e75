package repositories

import "errors"

var (
	// ErrNotFound is returned when the backend answers without the requested entity.
	ErrNotFound = errors.New("not found")
	// ErrInvalidResponse is returned when a 2xx body lacks a required field.
	ErrInvalidResponse = errors.New("invalid response from server")
)
