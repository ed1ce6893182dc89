package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/camelrate/internal/vision"
	"github.com/JaimeStill/camelrate/pkg/formatting"
)

// Stage labels validator model calls.
const Stage = "validation"

const instruction = `You are a camel detection expert. Analyze this image and determine:

1. Does this image contain a camel?
2. If yes, are the following camel body parts clearly visible and suitable for beauty analysis?
   - Head (including ears, snout, jaw)
   - Neck
   - Body (including withers, hump, back)
   - Legs (at least 2-3 legs should be visible)

Respond with a JSON object only:
{
  "contains_camel": true/false,
  "visible_parts": {"head": true/false, "neck": true/false, "body": true/false, "legs": true/false},
  "overall_suitability": true/false,
  "feedback": "what you see and why it is or is not suitable for camel beauty analysis",
  "missing_parts": ["missing or poorly visible parts"],
  "quality_issues": ["image quality issues, if any"]
}

Be strict: the image must clearly show a camel with most body parts visible for an accurate beauty analysis.`

// Validator asks the vision model whether an image can be rated.
type Validator struct {
	client vision.Client
	logger *slog.Logger
}

// New creates a Validator.
func New(client vision.Client, logger *slog.Logger) *Validator {
	return &Validator{
		client: client,
		logger: logger.With("system", "validation"),
	}
}

// Validate makes exactly one model call. Transport and parse failures yield
// a synthetic outcome with ValidatorFailed set; Validate never errors.
func (v *Validator) Validate(ctx context.Context, imageURL string) Outcome {
	content, err := v.client.Complete(ctx, vision.Request{
		Stage: Stage,
		Messages: []vision.Message{
			vision.User(vision.Text(instruction), vision.Image(imageURL)),
		},
		JSON: true,
	})
	if err != nil {
		v.logger.ErrorContext(ctx, "validator call failed", "error", err)
		return failed()
	}

	outcome, err := decode(content)
	if err != nil {
		v.logger.ErrorContext(ctx, "validator response unreadable", "error", err)
		return failed()
	}

	v.logger.InfoContext(ctx, "image validated",
		"contains_camel", outcome.ContainsCamel,
		"suitable", outcome.OverallSuitability,
	)
	return outcome
}

// ErrIncomplete is returned when a validator answer lacks a verdict field.
var ErrIncomplete = errors.New("validator answer missing verdict")

// verdictKeys must be present as booleans for an answer to count as a verdict.
var verdictKeys = []string{"contains_camel", "overall_suitability"}

func decode(content string) (Outcome, error) {
	raw, err := formatting.Parse[map[string]json.RawMessage](content)
	if err != nil {
		return Outcome{}, err
	}
	if raw == nil {
		return Outcome{}, fmt.Errorf("%w: not an object", ErrIncomplete)
	}
	for _, key := range verdictKeys {
		var b bool
		v, ok := raw[key]
		if !ok || json.Unmarshal(v, &b) != nil || string(v) == "null" {
			return Outcome{}, fmt.Errorf("%w: %s", ErrIncomplete, key)
		}
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return Outcome{}, err
	}
	var outcome Outcome
	if err := json.Unmarshal(b, &outcome); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", formatting.ErrParseFailed, err)
	}

	outcome.ValidatorFailed = false
	outcome.MissingParts = nonNil(outcome.MissingParts)
	outcome.QualityIssues = nonNil(outcome.QualityIssues)
	return outcome, nil
}
