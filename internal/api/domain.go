package api

import (
	"fmt"

	"github.com/JaimeStill/camelrate/internal/audit"
	"github.com/JaimeStill/camelrate/internal/cache"
	"github.com/JaimeStill/camelrate/internal/config"
	"github.com/JaimeStill/camelrate/internal/feedback"
	"github.com/JaimeStill/camelrate/internal/prompts"
	"github.com/JaimeStill/camelrate/internal/rating"
	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/validation"
	"github.com/JaimeStill/camelrate/pkg/lifecycle"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Feedback feedback.System
	Cache    cache.System
	Prompts  prompts.System
	Rating   rating.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	feedbackSystem := feedback.New(db, runtime.Logger, runtime.Pagination)
	cacheSystem := cache.New(db, runtime.Logger, runtime.Pagination)

	promptsSystem := prompts.New(
		prompts.Source(cfg.Rating.PromptsDir),
		feedbackSystem,
		cfg.Rating.GoldenLimit,
		cfg.Rating.Categories,
		runtime.Logger,
	)

	categories, err := promptsSystem.Categories()
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	table, err := scoring.NewTable(cfg.Scoring.Weights, cfg.Scoring.GenderWeights)
	if err != nil {
		return nil, fmt.Errorf("scoring table: %w", err)
	}

	orchestrator, err := rating.New(rating.Deps{
		Fetcher: runtime.Images,
		Fingerprint: func(data []byte) (string, error) {
			fp, err := runtime.Fingerprinter.Fingerprint(data)
			return string(fp), err
		},
		Store:      cacheSystem,
		Validator:  validation.New(runtime.Vision, runtime.Logger),
		Rater:      rating.NewRater(runtime.Vision, promptsSystem, cfg.Rating.MaxConcurrency, runtime.Logger),
		Auditor:    newAuditor(cfg, runtime),
		Table:      table,
		Categories: categories,
	}, cfg.Rating.WriteTimeoutDuration(), runtime.Logger)
	if err != nil {
		return nil, err
	}

	runtime.Lifecycle.OnStop(lifecycle.PhaseSettle, orchestrator.Wait)

	return &Domain{
		Feedback: feedbackSystem,
		Cache:    cacheSystem,
		Prompts:  promptsSystem,
		Rating:   orchestrator,
	}, nil
}

// newAuditor returns nil when auditing is disabled so the orchestrator
// skips the audit write entirely.
func newAuditor(cfg *config.Config, runtime *Runtime) rating.Auditor {
	var sink audit.Sink
	switch cfg.Audit.Mode {
	case config.AuditDirect:
		sink = audit.NewStore(runtime.Database.Connection(), runtime.Logger)
	case config.AuditQueue:
		sink = runtime.Queue
	default:
		return nil
	}

	images := runtime.Storage
	if !cfg.Audit.ArchiveImages {
		images = nil
	}

	return audit.NewRecorder(sink, images, runtime.Logger)
}
