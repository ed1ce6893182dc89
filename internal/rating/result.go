package rating

import (
	"encoding/json"
	"maps"
	"time"

	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/validation"
)

// Kind discriminates the CategoryResult variants.
type Kind string

const (
	// KindScored carries parsed attributes and a category score.
	KindScored Kind = "scored"
	// KindUnusable means the model reported the camel is not usable for the category.
	KindUnusable Kind = "unusable"
	// KindDegraded means the model call failed or its output could not be parsed.
	KindDegraded Kind = "degraded"
)

// CategoryResult is the rating of one beauty category.
type CategoryResult struct {
	Kind       Kind
	Attributes []scoring.Attribute
	Score      float64
	Analysis   string

	// Message and Category are set for KindUnusable.
	Message  string
	Category string

	// Extra holds free-form analysis fields returned by the model.
	Extra map[string]json.RawMessage
}

// MarshalJSON writes the variant-specific shape. Extra fields never
// override the typed ones.
func (c CategoryResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+5)
	for k, v := range c.Extra {
		out[k] = v
	}

	out["kind"] = c.Kind

	switch c.Kind {
	case KindUnusable:
		out["error"] = true
		out["message"] = c.Message
		out["category"] = c.Category
		out["category_score"] = nil
	case KindDegraded:
		out["category_score"] = 0
		out["analysis"] = c.Analysis
	default:
		attrs := c.Attributes
		if attrs == nil {
			attrs = []scoring.Attribute{}
		}
		out["attributes"] = attrs
		out["category_score"] = c.Score
		if c.Analysis != "" {
			out["analysis"] = c.Analysis
		}
	}

	return json.Marshal(out)
}

// Outcome is the cache payload for one image.
type Outcome struct {
	ValidationError  string             `json:"validation_error,omitempty"`
	ValidationResult validation.Outcome `json:"validation_result"`
	Valid            bool               `json:"is_valid_camel"`

	CategoryResults map[string]CategoryResult `json:"category_results,omitempty"`
	OverallScore    *float64                  `json:"overall_score,omitempty"`
	CategoryScores  map[string]float64        `json:"category_scores,omitempty"`
	ProcessingTime  float64                   `json:"processing_time_seconds,omitempty"`
}

func failureOutcome(v validation.Outcome, r *validation.Rejection) Outcome {
	return Outcome{
		ValidationError:  r.Reason,
		ValidationResult: v,
		Valid:            false,
	}
}

// Result is the response to a single rating request. Outcome is either a
// freshly computed outcome or the stored cache entry verbatim.
type Result struct {
	Outcome      json.RawMessage
	Cached       bool
	Fingerprint  string
	ResponseTime time.Duration
}

// MarshalJSON flattens the outcome and adds the request metadata.
func (r Result) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	if len(r.Outcome) > 0 {
		if err := json.Unmarshal(r.Outcome, &out); err != nil {
			return nil, err
		}
	}

	meta := map[string]any{
		"cached":           r.Cached,
		"response_time_ms": r.ResponseTime.Milliseconds(),
	}
	if r.Fingerprint != "" {
		meta["fingerprint"] = r.Fingerprint
	}

	flat := make(map[string]any, len(out)+len(meta))
	for k, v := range out {
		flat[k] = v
	}
	maps.Copy(flat, meta)

	return json.Marshal(flat)
}

// Comparison is the response to a two-image comparison.
type Comparison struct {
	Camel1          Outcome `json:"camel_1"`
	Camel2          Outcome `json:"camel_2"`
	Winner          string  `json:"winner"`
	ScoreDifference float64 `json:"score_difference"`
}

// Winner labels.
const (
	WinnerFirst  = "Camel 1"
	WinnerSecond = "Camel 2"
	WinnerTie    = "Tie"
)

func winner(a, b float64) string {
	switch {
	case a > b:
		return WinnerFirst
	case b > a:
		return WinnerSecond
	default:
		return WinnerTie
	}
}
