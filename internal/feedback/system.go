package feedback

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/camelrate/pkg/pagination"
)

// System defines the public contract for feedback operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
		sort string,
	) (*pagination.PageResult[Feedback], error)

	Find(ctx context.Context, id uuid.UUID) (*Feedback, error)
	Submit(ctx context.Context, cmd SubmitCommand) (*Feedback, error)
	Approve(ctx context.Context, id uuid.UUID) (*Feedback, error)
	Reject(ctx context.Context, id uuid.UUID) (*Feedback, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Approved returns up to limit approved corrections for category,
	// newest first.
	Approved(ctx context.Context, category string, limit int) ([]Feedback, error)
}
