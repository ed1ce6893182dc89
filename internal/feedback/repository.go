package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/camelrate/pkg/pagination"
	"github.com/JaimeStill/camelrate/pkg/query"
	"github.com/JaimeStill/camelrate/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a feedback repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "feedback"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
	sort string,
) (*pagination.PageResult[Feedback], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, newestFirst)
	filters.Apply(qb)

	if fields := query.ParseSortFields(sort); len(fields) > 0 {
		qb.OrderByFields(fields)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.Count(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanFeedback)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFeedback)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) Submit(ctx context.Context, cmd SubmitCommand) (*Feedback, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO rating_feedback(id, category, image_url, original_score,
			corrected_score, reasoning, status, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		` + returning

	var original, submittedBy any
	if len(cmd.OriginalScore) > 0 {
		original = []byte(cmd.OriginalScore)
	}
	if cmd.SubmittedBy != "" {
		submittedBy = cmd.SubmittedBy
	}

	args := []any{
		uuid.New(),
		cmd.Category,
		cmd.ImageURL,
		original,
		[]byte(cmd.CorrectedScore),
		cmd.Reasoning,
		StatusPending,
		submittedBy,
	}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Feedback, error) {
		return repository.QueryOne(ctx, tx, q, args, scanFeedback)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("feedback submitted", "id", f.ID, "category", f.Category)
	return &f, nil
}

func (r *repo) Approve(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	return r.review(ctx, id, StatusApproved)
}

func (r *repo) Reject(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	return r.review(ctx, id, StatusRejected)
}

// review transitions a pending correction. The status guard lives in the
// UPDATE so concurrent reviewers cannot both win; reviewed corrections
// are final.
func (r *repo) review(ctx context.Context, id uuid.UUID, status Status) (*Feedback, error) {
	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Feedback, error) {
		q := `
			UPDATE rating_feedback
			SET status = $1, reviewed_at = now()
			WHERE id = $2 AND status = $3
			` + returning

		f, err := repository.QueryOne(ctx, tx, q, []any{status, id, StatusPending}, scanFeedback)
		if !errors.Is(err, sql.ErrNoRows) {
			return f, err
		}

		n, err := repository.Count(ctx, tx, "SELECT COUNT(*) FROM rating_feedback WHERE id = $1", id)
		if err != nil {
			return Feedback{}, err
		}
		if n > 0 {
			return Feedback{}, ErrAlreadyReviewed
		}
		return Feedback{}, sql.ErrNoRows
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("feedback reviewed", "id", f.ID, "category", f.Category, "status", f.Status)
	return &f, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM rating_feedback WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("feedback deleted", "id", id)
	return nil
}

func (r *repo) Approved(ctx context.Context, category string, limit int) ([]Feedback, error) {
	if limit <= 0 {
		return nil, nil
	}

	approved := StatusApproved
	q, args := query.
		NewBuilder(projection, newestFirst).
		WhereEquals("Category", &category).
		WhereEquals("Status", &approved).
		BuildPage(1, limit)

	items, err := repository.QueryMany(ctx, r.db, q, args, scanFeedback)
	if err != nil {
		return nil, fmt.Errorf("query approved feedback: %w", err)
	}
	return items, nil
}
