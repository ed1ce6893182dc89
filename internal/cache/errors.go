package cache

import (
	"errors"
	"net/http"
)

// Domain errors for cache operations.
var (
	ErrNotFound       = errors.New("cache entry not found")
	ErrDuplicate      = errors.New("cache entry already exists")
	ErrEmptyKey       = errors.New("fingerprint required")
	ErrInvalidPayload = errors.New("cache payload must be valid JSON")
)

// MapHTTPStatus maps cache domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrEmptyKey), errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
