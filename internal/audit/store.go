package audit

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/JaimeStill/camelrate/pkg/repository"
)

// Store writes audit records to the conversations table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a Postgres-backed Sink.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With("system", "audit-store"),
	}
}

// Write inserts rec. A repeated ID returns ErrDuplicate.
func (s *Store) Write(ctx context.Context, rec Record) error {
	const q = `
		INSERT INTO conversations(id, user_id, image_url, fingerprint, image_key, response, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)`

	_, err := s.db.ExecContext(ctx, q,
		rec.ID, rec.UserID, rec.ImageURL, rec.Fingerprint, rec.ImageKey, []byte(rec.Response), rec.CreatedAt,
	)
	if err != nil {
		if repository.IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}

	s.logger.DebugContext(ctx, "conversation stored", "id", rec.ID)
	return nil
}
