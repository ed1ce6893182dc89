// Package feedback manages expert rating corrections. Approved corrections
// become golden examples injected into category prompts.
package feedback

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the review state of a correction.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Feedback is an expert correction of a category rating.
type Feedback struct {
	ID             uuid.UUID       `json:"id"`
	Category       string          `json:"category"`
	ImageURL       string          `json:"image_url"`
	OriginalScore  json.RawMessage `json:"original_score"`
	CorrectedScore json.RawMessage `json:"corrected_score"`
	Reasoning      *string         `json:"reasoning"`
	Status         Status          `json:"status"`
	SubmittedBy    *string         `json:"submitted_by"`
	CreatedAt      time.Time       `json:"created_at"`
	ReviewedAt     *time.Time      `json:"reviewed_at"`
}

// SubmitCommand contains the fields for a new correction.
type SubmitCommand struct {
	Category       string          `json:"category"`
	ImageURL       string          `json:"image_url"`
	OriginalScore  json.RawMessage `json:"original_score,omitempty"`
	CorrectedScore json.RawMessage `json:"corrected_score"`
	Reasoning      *string         `json:"reasoning,omitempty"`
	SubmittedBy    string          `json:"-"`
}

// Validate checks required fields and JSON payloads.
func (c SubmitCommand) Validate() error {
	if c.Category == "" {
		return fmt.Errorf("%w: category required", ErrInvalidFeedback)
	}
	if c.ImageURL == "" {
		return fmt.Errorf("%w: image_url required", ErrInvalidFeedback)
	}
	if len(c.CorrectedScore) == 0 || !json.Valid(c.CorrectedScore) || string(c.CorrectedScore) == "null" {
		return fmt.Errorf("%w: corrected_score must be a JSON value", ErrInvalidFeedback)
	}
	if len(c.OriginalScore) > 0 && !json.Valid(c.OriginalScore) {
		return fmt.Errorf("%w: original_score is not valid JSON", ErrInvalidFeedback)
	}
	return nil
}
