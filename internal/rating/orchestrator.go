// Package rating runs the camel rating pipeline: fingerprinting, cache
// lookup, validation, concurrent category rating, aggregation and the
// background cache and audit writes.
package rating

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/camelrate/internal/audit"
	"github.com/JaimeStill/camelrate/internal/cache"
	"github.com/JaimeStill/camelrate/internal/observability"
	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/validation"
	"github.com/JaimeStill/camelrate/pkg/imagefetch"
)

// Fetcher downloads image bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*imagefetch.Image, error)
}

// FingerprintFunc derives the cache key for image bytes.
type FingerprintFunc func(data []byte) (string, error)

// Store is the subset of the result cache the pipeline uses.
type Store interface {
	Lookup(ctx context.Context, fingerprint string) (*cache.Entry, error)
	Store(ctx context.Context, fingerprint string, valid bool, outcome json.RawMessage) error
}

// Validator decides whether an image can be rated.
type Validator interface {
	Validate(ctx context.Context, imageURL string) validation.Outcome
}

// CategoryRater rates every category of one image.
type CategoryRater interface {
	RateAll(ctx context.Context, categories []string, imageURL string, gender scoring.Gender) (map[string]CategoryResult, error)
}

// Auditor records successful conversations.
type Auditor interface {
	Record(ctx context.Context, rec audit.Record, image *imagefetch.Image) error
}

// Deps are the collaborators of an Orchestrator. Store, Fingerprint and
// Auditor are optional.
type Deps struct {
	Fetcher     Fetcher
	Fingerprint FingerprintFunc
	Store       Store
	Validator   Validator
	Rater       CategoryRater
	Auditor     Auditor
	Table       *scoring.Table
	Categories  []string
}

// Request is a single-image rating request.
type Request struct {
	ImageURL string `json:"image_url"`
	Gender   string `json:"gender"`
	UserID   string `json:"-"`
}

// CompareRequest is a two-image comparison request.
type CompareRequest struct {
	ImageURL1 string `json:"image_url_1"`
	ImageURL2 string `json:"image_url_2"`
	Gender    string `json:"gender"`
	UserID    string `json:"-"`
}

const defaultWriteTimeout = 10 * time.Second

// Orchestrator sequences the rating pipeline.
type Orchestrator struct {
	deps         Deps
	writeTimeout time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	closing bool
	tasks   sync.WaitGroup
}

// New creates an Orchestrator. Background writes are bounded by writeTimeout.
func New(deps Deps, writeTimeout time.Duration, logger *slog.Logger) (*Orchestrator, error) {
	if len(deps.Categories) == 0 {
		return nil, ErrNoCategories
	}
	if deps.Table == nil {
		deps.Table = scoring.DefaultTable()
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &Orchestrator{
		deps:         deps,
		writeTimeout: writeTimeout,
		logger:       logger.With("system", "rating"),
	}, nil
}

// Handler returns the HTTP handler for rating endpoints.
func (o *Orchestrator) Handler() *Handler {
	return NewHandler(o, o.deps.Table, o.logger)
}

// Categories returns the rated categories in rating order.
func (o *Orchestrator) Categories() []string {
	return o.deps.Categories
}

// Rate rates one image. An unsuitable image returns a *validation.Rejection.
func (o *Orchestrator) Rate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		return nil, ErrMissingImage
	}

	gender, err := scoring.ParseGender(req.Gender)
	if err != nil {
		return nil, err
	}

	image, fp := o.identify(ctx, imageURL)

	if fp != "" && o.deps.Store != nil {
		if res, err := o.lookup(ctx, fp, start); res != nil || err != nil {
			return res, err
		}
	}

	v := o.deps.Validator.Validate(ctx, imageURL)
	if rejection := v.Gate(); rejection != nil {
		if rejection.Cacheable() {
			if payload, err := json.Marshal(failureOutcome(v, rejection)); err == nil {
				o.store(ctx, fp, false, payload)
			}
		}
		observability.Ratings.WithLabelValues("rejected").Inc()
		return nil, rejection
	}

	outcome, err := o.analyze(ctx, imageURL, gender, v, start)
	if err != nil {
		observability.Ratings.WithLabelValues("error").Inc()
		return nil, err
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		return nil, fmt.Errorf("encode outcome: %w", err)
	}

	o.store(ctx, fp, true, payload)
	if req.UserID != "" {
		o.record(ctx, audit.Record{
			UserID:      req.UserID,
			ImageURL:    imageURL,
			Fingerprint: fp,
			Response:    payload,
		}, image)
	}

	observability.Ratings.WithLabelValues("scored").Inc()
	o.logger.InfoContext(ctx, "image rated",
		"fingerprint", fp,
		"overall_score", *outcome.OverallScore,
		"duration", time.Since(start),
	)

	return &Result{
		Outcome:      payload,
		Fingerprint:  fp,
		ResponseTime: time.Since(start),
	}, nil
}

// Compare rates two images concurrently without caching.
func (o *Orchestrator) Compare(ctx context.Context, req CompareRequest) (*Comparison, error) {
	urls := [2]string{strings.TrimSpace(req.ImageURL1), strings.TrimSpace(req.ImageURL2)}
	if urls[0] == "" || urls[1] == "" {
		return nil, fmt.Errorf("%w: both images are required", ErrMissingImage)
	}

	gender, err := scoring.ParseGender(req.Gender)
	if err != nil {
		return nil, err
	}

	labels := [2]string{WinnerFirst, WinnerSecond}
	var outcomes [2]Outcome
	var errs [2]error

	var g errgroup.Group
	for i := range urls {
		g.Go(func() error {
			start := time.Now()
			v := o.deps.Validator.Validate(ctx, urls[i])
			if rejection := v.Gate(); rejection != nil {
				errs[i] = rejection.Labeled(labels[i])
				return errs[i]
			}

			outcome, err := o.analyze(ctx, urls[i], gender, v, start)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", labels[i], err)
				return errs[i]
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		observability.Ratings.WithLabelValues("rejected").Inc()
		return nil, firstRejection(errs, err)
	}

	a, b := *outcomes[0].OverallScore, *outcomes[1].OverallScore
	observability.Ratings.WithLabelValues("compared").Inc()

	return &Comparison{
		Camel1:          outcomes[0],
		Camel2:          outcomes[1],
		Winner:          winner(a, b),
		ScoreDifference: scoring.Difference(a, b),
	}, nil
}

// Wait blocks until background cache and audit writes finish. Writes
// requested after Wait begins run inline on the caller's goroutine.
func (o *Orchestrator) Wait() {
	o.mu.Lock()
	o.closing = true
	o.mu.Unlock()
	o.tasks.Wait()
}

func (o *Orchestrator) identify(ctx context.Context, imageURL string) (*imagefetch.Image, string) {
	if o.deps.Fetcher == nil || o.deps.Fingerprint == nil {
		return nil, ""
	}

	image, err := o.deps.Fetcher.Fetch(ctx, imageURL)
	if err != nil {
		observability.FingerprintFailures.Inc()
		o.logger.WarnContext(ctx, "image fetch failed, caching disabled", "error", err)
		return nil, ""
	}

	fp, err := o.deps.Fingerprint(image.Data)
	if err != nil {
		observability.FingerprintFailures.Inc()
		o.logger.WarnContext(ctx, "fingerprint failed, caching disabled", "error", err)
		return image, ""
	}

	return image, fp
}

type cachedOutcome struct {
	Valid            bool               `json:"is_valid_camel"`
	ValidationResult validation.Outcome `json:"validation_result"`
}

// lookup returns (nil, nil) when the pipeline should continue.
func (o *Orchestrator) lookup(ctx context.Context, fp string, start time.Time) (*Result, error) {
	entry, err := o.deps.Store.Lookup(ctx, fp)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			o.logger.WarnContext(ctx, "cache lookup failed", "fingerprint", fp, "error", err)
		}
		return nil, nil
	}

	if !entry.Valid {
		var stored cachedOutcome
		if err := json.Unmarshal(entry.Outcome, &stored); err == nil {
			if rejection := stored.ValidationResult.Gate(); rejection != nil {
				rejection.Cached = true
				observability.Ratings.WithLabelValues("cached").Inc()
				return nil, rejection
			}
		}
		o.logger.WarnContext(ctx, "unreadable cached failure ignored", "fingerprint", fp)
		return nil, nil
	}

	observability.Ratings.WithLabelValues("cached").Inc()
	o.logger.InfoContext(ctx, "cache hit", "fingerprint", fp)

	return &Result{
		Outcome:      entry.Outcome,
		Cached:       true,
		Fingerprint:  fp,
		ResponseTime: time.Since(start),
	}, nil
}

func (o *Orchestrator) analyze(
	ctx context.Context,
	imageURL string,
	gender scoring.Gender,
	v validation.Outcome,
	start time.Time,
) (Outcome, error) {
	results, err := o.deps.Rater.RateAll(ctx, o.deps.Categories, imageURL, gender)
	if err != nil {
		return Outcome{}, err
	}

	categories := make(map[string]scoring.Category, len(results))
	for name, r := range results {
		categories[name] = scoring.Category{
			Attributes: r.Attributes,
			Unusable:   r.Kind == KindUnusable,
		}
	}

	summary := o.deps.Table.Aggregate(categories, gender)

	return Outcome{
		ValidationResult: v,
		Valid:            true,
		CategoryResults:  results,
		OverallScore:     &summary.Overall,
		CategoryScores:   summary.Categories,
		ProcessingTime:   scoring.Round(time.Since(start).Seconds()),
	}, nil
}

func (o *Orchestrator) store(ctx context.Context, fp string, valid bool, payload json.RawMessage) {
	if fp == "" || o.deps.Store == nil {
		return
	}

	o.background(ctx, func(ctx context.Context) {
		err := o.deps.Store.Store(ctx, fp, valid, payload)
		switch {
		case err == nil:
		case errors.Is(err, cache.ErrDuplicate):
			o.logger.Debug("cache entry already present", "fingerprint", fp)
		default:
			o.logger.Warn("cache store failed", "fingerprint", fp, "error", err)
		}
	})
}

func (o *Orchestrator) record(ctx context.Context, rec audit.Record, image *imagefetch.Image) {
	if o.deps.Auditor == nil {
		return
	}

	o.background(ctx, func(ctx context.Context) {
		if err := o.deps.Auditor.Record(ctx, rec, image); err != nil {
			o.logger.Warn("audit record failed", "user_id", rec.UserID, "error", err)
		}
	})
}

// background runs fn detached from the request's cancellation with a
// bounded timeout.
func (o *Orchestrator) background(parent context.Context, fn func(ctx context.Context)) {
	detached := context.WithoutCancel(parent)
	task := func() {
		ctx, cancel := context.WithTimeout(detached, o.writeTimeout)
		defer cancel()
		fn(ctx)
	}

	o.mu.Lock()
	if o.closing {
		o.mu.Unlock()
		task()
		return
	}
	o.tasks.Go(task)
	o.mu.Unlock()
}

func firstRejection(errs [2]error, fallback error) error {
	for _, err := range errs {
		var rejection *validation.Rejection
		if errors.As(err, &rejection) {
			return err
		}
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return fallback
}
