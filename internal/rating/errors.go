package rating

import (
	"context"
	"errors"
	"net/http"

	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/validation"
)

// Domain errors for rating operations.
var (
	ErrMissingImage = errors.New("image_url is required")
	ErrNoCategories = errors.New("no rating categories configured")
)

// MapHTTPStatus maps rating errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var rejection *validation.Rejection
	switch {
	case errors.As(err, &rejection):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingImage), errors.Is(err, scoring.ErrInvalidGender):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
