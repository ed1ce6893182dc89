// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, vision, audit
// queue) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/camelrate/internal/audit"
	"github.com/JaimeStill/camelrate/internal/config"
	"github.com/JaimeStill/camelrate/internal/fingerprint"
	"github.com/JaimeStill/camelrate/internal/vision"
	"github.com/JaimeStill/camelrate/pkg/database"
	"github.com/JaimeStill/camelrate/pkg/imagefetch"
	"github.com/JaimeStill/camelrate/pkg/lifecycle"
	"github.com/JaimeStill/camelrate/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Storage is nil when blob storage is disabled and Queue is nil unless the
// audit mode is queue.
type Infrastructure struct {
	Lifecycle     *lifecycle.Coordinator
	Logger        *slog.Logger
	Database      database.System
	Storage       storage.System
	Images        *imagefetch.Fetcher
	Fingerprinter *fingerprint.Fingerprinter
	Vision        vision.Client
	Queue         *audit.Queue
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	images := imagefetch.New(cfg.Rating.FetchTimeoutDuration(), cfg.Rating.MaxImageBytes())

	client, err := vision.New(&cfg.Vision, images, logger)
	if err != nil {
		return nil, fmt.Errorf("vision init failed: %w", err)
	}

	var queue *audit.Queue
	if cfg.Audit.Mode == config.AuditQueue {
		queue, err = audit.Connect(cfg.Audit.NATSURL, cfg.Audit.Stream, cfg.Audit.Subject, logger)
		if err != nil {
			return nil, fmt.Errorf("audit queue init failed: %w", err)
		}
	}

	return &Infrastructure{
		Lifecycle:     lc,
		Logger:        logger,
		Database:      db,
		Storage:       store,
		Images:        images,
		Fingerprinter: fingerprint.New(cfg.Rating.FingerprintEdge),
		Vision:        client,
		Queue:         queue,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// In queue mode the audit stream is provisioned at startup and an in-process
// consumer drains it into the conversations table.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	if i.Queue != nil {
		i.startQueue()
	}
	return nil
}

func (i *Infrastructure) startQueue() {
	lc := i.Lifecycle
	sink := audit.NewStore(i.Database.Connection(), i.Logger)

	lc.OnStartup(func() {
		if err := i.Queue.EnsureStream(lc.Context()); err != nil {
			i.Logger.Error("audit stream unavailable", "error", err)
			return
		}

		lc.Go(func(ctx context.Context) {
			if err := i.Queue.Consume(ctx, sink); err != nil {
				i.Logger.Error("audit consumer stopped", "error", err)
			}
		})
	})

	lc.OnShutdown(func() {
		if err := i.Queue.Close(); err != nil {
			i.Logger.Error("audit queue close failed", "error", err)
		}
	})
}
