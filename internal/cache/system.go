package cache

import (
	"context"
	"encoding/json"

	"github.com/JaimeStill/camelrate/pkg/pagination"
)

// System defines the public contract for the result cache.
type System interface {
	Handler() *Handler

	// Lookup returns ErrNotFound on a miss.
	Lookup(ctx context.Context, fingerprint string) (*Entry, error)
	// Store returns ErrDuplicate when an entry already exists.
	Store(ctx context.Context, fingerprint string, valid bool, outcome json.RawMessage) error
	Invalidate(ctx context.Context, fingerprint string) error
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error)
}
