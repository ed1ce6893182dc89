package feedback

import (
	"net/url"

	"github.com/JaimeStill/camelrate/pkg/query"
	"github.com/JaimeStill/camelrate/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "rating_feedback", "f").
	Project("id", "ID").
	Project("category", "Category").
	Project("image_url", "ImageURL").
	Project("original_score", "OriginalScore").
	Project("corrected_score", "CorrectedScore").
	Project("reasoning", "Reasoning").
	Project("status", "Status").
	Project("submitted_by", "SubmittedBy").
	Project("created_at", "CreatedAt").
	Project("reviewed_at", "ReviewedAt")

var newestFirst = query.SortField{Field: "CreatedAt", Descending: true}

const returning = `RETURNING id, category, image_url, original_score, corrected_score,
	reasoning, status, submitted_by, created_at, reviewed_at`

// Filters narrows feedback listings. Nil fields are ignored.
type Filters struct {
	Category *string `json:"category,omitempty"`
	Status   *Status `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Category", f.Category).
		WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown status values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" {
		f.Category = &c
	}

	if s := values.Get("status"); s != "" {
		if st, err := ParseStatus(s); err == nil {
			f.Status = &st
		}
	}

	return f
}

func scanFeedback(s repository.Scanner) (Feedback, error) {
	var (
		f         Feedback
		original  []byte
		corrected []byte
	)
	err := s.Scan(
		&f.ID,
		&f.Category,
		&f.ImageURL,
		&original,
		&corrected,
		&f.Reasoning,
		&f.Status,
		&f.SubmittedBy,
		&f.CreatedAt,
		&f.ReviewedAt,
	)
	if len(original) > 0 {
		f.OriginalScore = original
	}
	f.CorrectedScore = corrected
	return f, err
}
