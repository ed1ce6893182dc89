package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGender is returned for gender values other than male, female or unknown.
var ErrInvalidGender = errors.New("gender must be male, female, or unknown")

// Gender conditions prompts and attribute weights.
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// ParseGender normalizes s case-insensitively. Empty input is GenderUnknown.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown", "none":
		return GenderUnknown, nil
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	default:
		return GenderUnknown, fmt.Errorf("%w: %q", ErrInvalidGender, s)
	}
}

// Known reports whether g selects gender-specific rules.
func (g Gender) Known() bool {
	return g == GenderMale || g == GenderFemale
}
