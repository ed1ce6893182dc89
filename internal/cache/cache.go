// Package cache persists rating outcomes keyed by image fingerprint.
// Entries are immutable once written.
package cache

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/JaimeStill/camelrate/pkg/query"
	"github.com/JaimeStill/camelrate/pkg/repository"
)

// Entry is a stored rating outcome.
type Entry struct {
	Fingerprint string          `json:"fingerprint"`
	Valid       bool            `json:"is_valid"`
	Outcome     json.RawMessage `json:"outcome"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Filters narrows cache listings. Nil fields are ignored.
type Filters struct {
	Valid *bool `json:"is_valid,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("Valid", f.Valid)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("is_valid"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Valid = &b
		}
	}
	return f
}

var projection = query.
	NewProjectionMap("public", "rating_cache", "c").
	Project("fingerprint", "Fingerprint").
	Project("is_valid", "Valid").
	Project("outcome", "Outcome").
	Project("created_at", "CreatedAt")

var newestFirst = query.SortField{Field: "CreatedAt", Descending: true}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e       Entry
		outcome []byte
	)
	err := s.Scan(&e.Fingerprint, &e.Valid, &outcome, &e.CreatedAt)
	e.Outcome = outcome
	return e, err
}
