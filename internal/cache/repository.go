package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/camelrate/internal/observability"
	"github.com/JaimeStill/camelrate/pkg/pagination"
	"github.com/JaimeStill/camelrate/pkg/query"
	"github.com/JaimeStill/camelrate/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a Postgres-backed cache implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "cache"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Lookup(ctx context.Context, fingerprint string) (*Entry, error) {
	if fingerprint == "" {
		return nil, ErrEmptyKey
	}

	q, args := query.NewBuilder(projection).BuildSingle("Fingerprint", fingerprint)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		err = repository.MapError(err, ErrNotFound, ErrDuplicate)
		result := "error"
		if errors.Is(err, ErrNotFound) {
			result = "miss"
		}
		observability.CacheLookups.WithLabelValues(result).Inc()
		return nil, err
	}

	observability.CacheLookups.WithLabelValues("hit").Inc()
	return &e, nil
}

func (r *repo) Store(ctx context.Context, fingerprint string, valid bool, outcome json.RawMessage) error {
	if fingerprint == "" {
		return ErrEmptyKey
	}
	if !json.Valid(outcome) {
		return ErrInvalidPayload
	}

	const q = `
		INSERT INTO rating_cache(fingerprint, is_valid, outcome)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, q, fingerprint, valid, []byte(outcome)); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Debug("cache entry stored", "fingerprint", fingerprint, "valid", valid)
	return nil
}

func (r *repo) Invalidate(ctx context.Context, fingerprint string) error {
	if fingerprint == "" {
		return ErrEmptyKey
	}

	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM rating_cache WHERE fingerprint = $1",
		fingerprint,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("cache entry invalidated", "fingerprint", fingerprint)
	return nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, newestFirst)
	filters.Apply(qb)

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count cache entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query cache entries: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}
