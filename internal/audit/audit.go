// Package audit records successful rating conversations for identified
// callers, either directly in Postgres or through a NATS JetStream queue.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/camelrate/internal/observability"
	"github.com/JaimeStill/camelrate/pkg/imagefetch"
	"github.com/JaimeStill/camelrate/pkg/storage"
)

// ErrDuplicate indicates the record was already written.
var ErrDuplicate = errors.New("audit record already exists")

// Record is one audited conversation.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"user_id"`
	ImageURL    string          `json:"image_url"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	ImageKey    string          `json:"image_key,omitempty"`
	Response    json.RawMessage `json:"response"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Sink persists or forwards audit records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// ImageKey is the blob key under which the image for rec is archived.
func ImageKey(rec Record) string {
	if rec.Fingerprint != "" {
		return "images/" + rec.Fingerprint
	}
	return "images/" + rec.ID.String()
}

// Recorder archives the rated image and hands the record to a sink.
type Recorder struct {
	sink   Sink
	images storage.System
	logger *slog.Logger
}

// NewRecorder creates a Recorder. A nil images disables archiving.
func NewRecorder(sink Sink, images storage.System, logger *slog.Logger) *Recorder {
	return &Recorder{
		sink:   sink,
		images: images,
		logger: logger.With("system", "audit"),
	}
}

// Record writes rec. Archive failures are logged and the record is written
// without an image key.
func (r *Recorder) Record(ctx context.Context, rec Record, image *imagefetch.Image) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if r.images != nil && image != nil && len(image.Data) > 0 {
		key, err := r.archive(ctx, rec, image)
		if err != nil {
			observability.AuditRecords.WithLabelValues("archive_failed").Inc()
			r.logger.WarnContext(ctx, "image archive failed", "id", rec.ID, "error", err)
		} else {
			rec.ImageKey = key
		}
	}

	if err := r.sink.Write(ctx, rec); err != nil && !errors.Is(err, ErrDuplicate) {
		observability.AuditRecords.WithLabelValues("failed").Inc()
		return fmt.Errorf("write audit record %s: %w", rec.ID, err)
	}

	observability.AuditRecords.WithLabelValues("written").Inc()
	r.logger.DebugContext(ctx, "audit record written", "id", rec.ID, "user_id", rec.UserID)
	return nil
}

func (r *Recorder) archive(ctx context.Context, rec Record, image *imagefetch.Image) (string, error) {
	key := ImageKey(rec)

	exists, err := r.images.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		return key, nil
	}

	err = r.images.Upload(ctx, key, bytes.NewReader(image.Data), int64(len(image.Data)), image.ContentType)
	if err != nil {
		return "", err
	}
	return key, nil
}
