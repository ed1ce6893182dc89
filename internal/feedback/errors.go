package feedback

import (
	"errors"
	"net/http"
)

// Domain errors for feedback operations.
var (
	ErrNotFound        = errors.New("feedback not found")
	ErrDuplicate       = errors.New("feedback already exists")
	ErrInvalidFeedback = errors.New("invalid feedback")
	ErrInvalidStatus   = errors.New("status must be pending, approved, or rejected")
	ErrAlreadyReviewed = errors.New("feedback already reviewed")
)

// MapHTTPStatus maps feedback domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidFeedback), errors.Is(err, ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
