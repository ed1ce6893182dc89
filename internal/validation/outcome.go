// Package validation gates rating requests on whether the image shows a
// camel with enough of its body visible to judge.
package validation

import "strings"

// Rejection reasons.
const (
	ReasonUnavailable = "Unable to validate image"
	ReasonNoCamel     = "No camel detected in the image"
	ReasonUnsuitable  = "Image not suitable for comprehensive camel beauty analysis"
)

var (
	unavailableSuggestions = []string{
		"Try again in a few moments",
		"Make sure the image URL is publicly reachable",
	}
	noCamelSuggestions = []string{
		"Upload a photo that clearly shows a camel",
		"Make sure the camel is the main subject of the image",
	}
	unsuitableSuggestions = []string{
		"Take a side-profile photo showing the whole camel",
		"Make sure the head, neck, body and legs are all in frame",
		"Use good lighting and avoid blurry or distant shots",
	}
)

// VisibleParts reports which body regions can be assessed.
type VisibleParts struct {
	Head bool `json:"head"`
	Neck bool `json:"neck"`
	Body bool `json:"body"`
	Legs bool `json:"legs"`
}

// Outcome is the validator's judgement of an image.
type Outcome struct {
	ContainsCamel      bool         `json:"contains_camel"`
	VisibleParts       VisibleParts `json:"visible_parts"`
	OverallSuitability bool         `json:"overall_suitability"`
	Feedback           string       `json:"feedback"`
	MissingParts       []string     `json:"missing_parts"`
	QualityIssues      []string     `json:"quality_issues"`
	// ValidatorFailed marks a synthetic outcome produced when the model
	// could not be reached or its answer could not be read.
	ValidatorFailed bool `json:"validator_failed,omitempty"`
}

func failed() Outcome {
	return Outcome{
		Feedback:        "The image could not be validated. Please try again.",
		MissingParts:    []string{},
		QualityIssues:   []string{},
		ValidatorFailed: true,
	}
}

// Gate decides whether rating may proceed. A nil result means proceed.
func (o Outcome) Gate() *Rejection {
	switch {
	case o.ValidatorFailed:
		return o.reject(ReasonUnavailable, unavailableSuggestions)
	case !o.ContainsCamel:
		return o.reject(ReasonNoCamel, noCamelSuggestions)
	case !o.OverallSuitability:
		return o.reject(ReasonUnsuitable, unsuitableSuggestions)
	default:
		return nil
	}
}

func (o Outcome) reject(reason string, suggestions []string) *Rejection {
	return &Rejection{
		Reason:        reason,
		Feedback:      o.Feedback,
		MissingParts:  nonNil(o.MissingParts),
		QualityIssues: nonNil(o.QualityIssues),
		Suggestions:   suggestions,
		Validation:    o,
	}
}

// Rejection is the user-facing result of a failed gate. It is returned as an
// error value and rendered as a 400 response.
type Rejection struct {
	Reason        string   `json:"error"`
	Feedback      string   `json:"feedback"`
	MissingParts  []string `json:"missing_parts"`
	QualityIssues []string `json:"quality_issues"`
	Suggestions   []string `json:"suggestions"`
	Validation    Outcome  `json:"validation_result"`
	Cached        bool     `json:"cached"`
	// Image labels the rejected image in a comparison.
	Image string `json:"image,omitempty"`
}

func (r *Rejection) Error() string {
	return r.Reason
}

// Cacheable reports whether the rejection reflects the image itself rather
// than a validator outage.
func (r *Rejection) Cacheable() bool {
	return !r.Validation.ValidatorFailed
}

// Labeled returns a copy of r attributed to the named image.
func (r *Rejection) Labeled(image string) *Rejection {
	c := *r
	c.Image = image
	c.Reason = image + ": " + strings.TrimPrefix(r.Reason, r.Image+": ")
	return &c
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
