package prompts

import (
	"errors"
	"net/http"
)

// Domain errors for prompt operations.
var (
	ErrUnknownCategory = errors.New("unknown rating category")
	ErrInvalidTemplate = errors.New("invalid prompt template")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownCategory) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
