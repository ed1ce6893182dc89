// Package storage provides blob storage behind a single System interface with
// Azure Blob Storage and MinIO (S3-compatible) implementations.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/JaimeStill/camelrate/pkg/lifecycle"
)

// Object is a downloaded blob. The caller must close Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that provisions the container or bucket.
	Start(lc *lifecycle.Coordinator) error
	// Upload writes size bytes from reader to key. Use -1 when size is unknown.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download opens the object at key. Returns ErrNotFound if it does not exist.
	Download(ctx context.Context, key string) (*Object, error)
	// Delete removes the object at key. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)
}

// New creates the storage system selected by cfg.Provider.
// It returns (nil, nil) when storage is disabled.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderMinIO:
		return newMinIO(cfg, logger)
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ValidateKey rejects empty keys and keys containing path traversal.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
