package rating_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/camelrate/internal/audit"
	"github.com/JaimeStill/camelrate/internal/cache"
	"github.com/JaimeStill/camelrate/internal/rating"
	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/validation"
	"github.com/JaimeStill/camelrate/pkg/imagefetch"
)

var categories = []string{"body", "head", "legs", "neck"}

type stubFetcher struct {
	err error
}

func (f stubFetcher) Fetch(_ context.Context, url string) (*imagefetch.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &imagefetch.Image{Data: []byte(url), ContentType: "image/jpeg"}, nil
}

func fingerprintOf(data []byte) (string, error) {
	return "fp-" + string(data), nil
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]cache.Entry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]cache.Entry{}}
}

func (s *memoryStore) Lookup(_ context.Context, fp string) (*cache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[fp]
	if !ok {
		return nil, cache.ErrNotFound
	}
	return &e, nil
}

func (s *memoryStore) Store(_ context.Context, fp string, valid bool, outcome json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[fp]; ok {
		return cache.ErrDuplicate
	}
	s.entries[fp] = cache.Entry{Fingerprint: fp, Valid: valid, Outcome: outcome}
	return nil
}

type stubValidator struct {
	mu       sync.Mutex
	outcomes map[string]validation.Outcome
	calls    int
}

func (v *stubValidator) Validate(_ context.Context, url string) validation.Outcome {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.outcomes[url]
}

var suitable = validation.Outcome{
	ContainsCamel:      true,
	VisibleParts:       validation.VisibleParts{Head: true, Neck: true, Body: true, Legs: true},
	OverallSuitability: true,
	Feedback:           "clear",
}

type stubRater struct {
	mu      sync.Mutex
	results map[string]map[string]rating.CategoryResult
	genders []scoring.Gender
}

func (r *stubRater) RateAll(_ context.Context, _ []string, url string, gender scoring.Gender) (map[string]rating.CategoryResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.genders = append(r.genders, gender)
	return r.results[url], nil
}

type stubAuditor struct {
	mu      sync.Mutex
	records []audit.Record
	images  []*imagefetch.Image
}

func (a *stubAuditor) Record(_ context.Context, rec audit.Record, image *imagefetch.Image) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	a.images = append(a.images, image)
	return nil
}

func ptr(v float64) *float64 { return &v }

func scored(attrs ...scoring.Attribute) rating.CategoryResult {
	return rating.CategoryResult{Kind: rating.KindScored, Attributes: attrs, Score: scoring.CategoryScore(attrs)}
}

// camelResults scores HEAD SIZE (weight 5) and LIP LENGTH (weight 3).
func camelResults(head, lip float64) map[string]rating.CategoryResult {
	return map[string]rating.CategoryResult{
		"head": scored(scoring.Attribute{Name: "HEAD SIZE", Score: ptr(head)}, scoring.Attribute{Name: "LIP LENGTH", Score: ptr(lip)}),
		"neck": {Kind: rating.KindUnusable, Message: "neck hidden", Category: "neck"},
		"body": {Kind: rating.KindDegraded, Analysis: "timeout"},
		"legs": scored(),
	}
}

type fixture struct {
	store     *memoryStore
	validator *stubValidator
	rater     *stubRater
	auditor   *stubAuditor
	orch      *rating.Orchestrator
}

func newFixture(t *testing.T, fetcher rating.Fetcher) *fixture {
	t.Helper()

	f := &fixture{
		store: newMemoryStore(),
		validator: &stubValidator{outcomes: map[string]validation.Outcome{
			"https://img/a.jpg":   suitable,
			"https://img/b.jpg":   suitable,
			"https://img/cat.jpg": {Feedback: "a cat"},
			"https://img/err.jpg": {ValidatorFailed: true},
		}},
		rater: &stubRater{results: map[string]map[string]rating.CategoryResult{
			"https://img/a.jpg": camelResults(8, 6),
			"https://img/b.jpg": camelResults(6, 6),
		}},
		auditor: &stubAuditor{},
	}

	orch, err := rating.New(rating.Deps{
		Fetcher:     fetcher,
		Fingerprint: fingerprintOf,
		Store:       f.store,
		Validator:   f.validator,
		Rater:       f.rater,
		Auditor:     f.auditor,
		Categories:  categories,
	}, time.Second, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.orch = orch
	return f
}

func decode(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	return m
}

func TestRateAndCache(t *testing.T) {
	f := newFixture(t, stubFetcher{})
	ctx := context.Background()

	first, err := f.orch.Rate(ctx, rating.Request{ImageURL: "https://img/a.jpg", Gender: "Male"})
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	f.orch.Wait()

	if first.Cached {
		t.Error("first result should not be cached")
	}
	if first.Fingerprint != "fp-https://img/a.jpg" {
		t.Errorf("fingerprint = %q", first.Fingerprint)
	}

	outcome := decode(t, first.Outcome)
	// (8*5 + 6*3) / 8 = 7.25; neck is unusable and excluded
	if outcome["overall_score"] != 7.25 {
		t.Errorf("overall_score = %v, want 7.25", outcome["overall_score"])
	}
	scores := outcome["category_scores"].(map[string]any)
	if scores["head"] != 7.0 || scores["neck"] != 0.0 || scores["body"] != 0.0 {
		t.Errorf("category_scores = %v", scores)
	}
	if outcome["is_valid_camel"] != true {
		t.Error("is_valid_camel should be true")
	}
	if f.rater.genders[0] != scoring.GenderMale {
		t.Errorf("gender = %s", f.rater.genders[0])
	}

	second, err := f.orch.Rate(ctx, rating.Request{ImageURL: "https://img/a.jpg"})
	if err != nil {
		t.Fatalf("Rate (cached): %v", err)
	}
	if !second.Cached {
		t.Error("second result should be cached")
	}
	if string(second.Outcome) != string(first.Outcome) {
		t.Error("cached outcome should be returned verbatim")
	}
	if f.validator.calls != 1 || len(f.rater.genders) != 1 {
		t.Errorf("cache hit should skip the model: validator=%d rater=%d", f.validator.calls, len(f.rater.genders))
	}
}

func TestRateAfterWaitWritesInline(t *testing.T) {
	f := newFixture(t, stubFetcher{})
	f.orch.Wait()

	if _, err := f.orch.Rate(context.Background(), rating.Request{ImageURL: "https://img/b.jpg", UserID: "u1"}); err != nil {
		t.Fatalf("Rate: %v", err)
	}

	// no second Wait: the writes must already have happened
	if _, err := f.store.Lookup(context.Background(), "fp-https://img/b.jpg"); err != nil {
		t.Errorf("entry not stored inline: %v", err)
	}
	f.auditor.mu.Lock()
	defer f.auditor.mu.Unlock()
	if len(f.auditor.records) != 1 {
		t.Errorf("audit records = %d, want 1", len(f.auditor.records))
	}
}

func TestRateRejections(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantReason string
		wantStored bool
	}{
		{"no camel is cached", "https://img/cat.jpg", validation.ReasonNoCamel, true},
		{"validator failure is not cached", "https://img/err.jpg", validation.ReasonUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, stubFetcher{})

			_, err := f.orch.Rate(context.Background(), rating.Request{ImageURL: tt.url})
			f.orch.Wait()

			var rejection *validation.Rejection
			if !errors.As(err, &rejection) {
				t.Fatalf("err = %v, want rejection", err)
			}
			if rejection.Reason != tt.wantReason || rejection.Cached {
				t.Errorf("rejection = %+v", rejection)
			}

			entry, lookupErr := f.store.Lookup(context.Background(), "fp-"+tt.url)
			if (lookupErr == nil) != tt.wantStored {
				t.Fatalf("stored = %v, want %v", lookupErr == nil, tt.wantStored)
			}
			if !tt.wantStored {
				return
			}
			if entry.Valid {
				t.Error("failure entry should be invalid")
			}
			if got := decode(t, entry.Outcome)["validation_error"]; got != tt.wantReason {
				t.Errorf("validation_error = %v", got)
			}

			_, err = f.orch.Rate(context.Background(), rating.Request{ImageURL: tt.url})
			if !errors.As(err, &rejection) || !rejection.Cached {
				t.Errorf("repeat should surface a cached rejection: %v", err)
			}
			if f.validator.calls != 1 {
				t.Errorf("validator calls = %d, want 1", f.validator.calls)
			}
			if len(f.rater.genders) != 0 {
				t.Error("rejected images must not be rated")
			}
		})
	}
}

func TestRateWithoutFingerprint(t *testing.T) {
	f := newFixture(t, stubFetcher{err: imagefetch.ErrNotImage})

	for range 2 {
		res, err := f.orch.Rate(context.Background(), rating.Request{ImageURL: "https://img/a.jpg", UserID: "u-1"})
		if err != nil {
			t.Fatalf("Rate: %v", err)
		}
		if res.Cached || res.Fingerprint != "" {
			t.Errorf("result = %+v", res)
		}
	}
	f.orch.Wait()

	if f.validator.calls != 2 {
		t.Errorf("validator calls = %d, want 2", f.validator.calls)
	}
	if len(f.store.entries) != 0 {
		t.Error("nothing should be cached without a fingerprint")
	}
	if len(f.auditor.records) != 2 {
		t.Fatalf("records = %d, want 2", len(f.auditor.records))
	}
	if f.auditor.records[0].Fingerprint != "" || f.auditor.images[0] != nil {
		t.Error("records without an image carry no fingerprint or archive")
	}
}

func TestRateAudit(t *testing.T) {
	f := newFixture(t, stubFetcher{})

	if _, err := f.orch.Rate(context.Background(), rating.Request{ImageURL: "https://img/a.jpg"}); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if _, err := f.orch.Rate(context.Background(), rating.Request{ImageURL: "https://img/b.jpg", UserID: "user-7"}); err != nil {
		t.Fatalf("Rate: %v", err)
	}
	f.orch.Wait()

	if len(f.auditor.records) != 1 {
		t.Fatalf("records = %d, want 1", len(f.auditor.records))
	}
	rec := f.auditor.records[0]
	if rec.UserID != "user-7" || rec.ImageURL != "https://img/b.jpg" || rec.Fingerprint != "fp-https://img/b.jpg" {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Response) == 0 {
		t.Error("record should carry the response")
	}
	if f.auditor.images[0] == nil {
		t.Error("fetched image should be passed for archiving")
	}
}

func TestRateInvalidInput(t *testing.T) {
	f := newFixture(t, stubFetcher{})

	tests := []struct {
		name string
		req  rating.Request
		want error
	}{
		{"missing image", rating.Request{ImageURL: "  "}, rating.ErrMissingImage},
		{"invalid gender", rating.Request{ImageURL: "https://img/a.jpg", Gender: "camel"}, scoring.ErrInvalidGender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.orch.Rate(context.Background(), tt.req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewRequiresCategories(t *testing.T) {
	if _, err := rating.New(rating.Deps{}, time.Second, discard()); !errors.Is(err, rating.ErrNoCategories) {
		t.Errorf("err = %v, want ErrNoCategories", err)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		url1, url2 string
		winner     string
		difference float64
	}{
		// a: (8*5 + 6*3) / 8 = 7.25, b: 6
		{"first wins", "https://img/a.jpg", "https://img/b.jpg", rating.WinnerFirst, 1.25},
		{"second wins", "https://img/b.jpg", "https://img/a.jpg", rating.WinnerSecond, 1.25},
		{"tie", "https://img/a.jpg", "https://img/a.jpg", rating.WinnerTie, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, stubFetcher{})

			cmp, err := f.orch.Compare(context.Background(), rating.CompareRequest{ImageURL1: tt.url1, ImageURL2: tt.url2})
			if err != nil {
				t.Fatalf("Compare: %v", err)
			}
			f.orch.Wait()

			if cmp.Winner != tt.winner || cmp.ScoreDifference != tt.difference {
				t.Errorf("winner = %s diff = %v, want %s %v", cmp.Winner, cmp.ScoreDifference, tt.winner, tt.difference)
			}
			if len(f.store.entries) != 0 {
				t.Error("comparisons are not cached")
			}
		})
	}
}

func TestCompareRejection(t *testing.T) {
	f := newFixture(t, stubFetcher{})

	_, err := f.orch.Compare(context.Background(), rating.CompareRequest{
		ImageURL1: "https://img/a.jpg",
		ImageURL2: "https://img/cat.jpg",
	})

	var rejection *validation.Rejection
	if !errors.As(err, &rejection) {
		t.Fatalf("err = %v, want rejection", err)
	}
	if rejection.Image != rating.WinnerSecond {
		t.Errorf("image label = %q, want %q", rejection.Image, rating.WinnerSecond)
	}
	if rejection.Error() != "Camel 2: "+validation.ReasonNoCamel {
		t.Errorf("error = %q", rejection.Error())
	}
}
