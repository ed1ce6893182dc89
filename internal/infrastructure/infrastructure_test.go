package infrastructure_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/JaimeStill/camelrate/internal/config"
	"github.com/JaimeStill/camelrate/internal/infrastructure"
	"github.com/JaimeStill/camelrate/internal/vision"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CAMELRATE_VISION_API_KEY", "sk-test")

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	return cfg
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(loadConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil || infra.Database.Connection() == nil {
		t.Error("Database is nil")
	}
	if infra.Images == nil || infra.Fingerprinter == nil || infra.Vision == nil {
		t.Error("rating infrastructure is incomplete")
	}
	if infra.Storage != nil {
		t.Error("Storage should be nil when the provider is none")
	}
	if infra.Queue != nil {
		t.Error("Queue should be nil outside queue mode")
	}
}

func TestNewMissingAPIKey(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Vision.APIKey = ""

	if _, err := infrastructure.New(cfg); !errors.Is(err, vision.ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestNewUnknownStorageProvider(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Storage.Provider = "ftp"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Error("expected storage init error")
	}
}

func TestStartWithoutStorage(t *testing.T) {
	infra, err := infrastructure.New(loadConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := infra.Lifecycle.Shutdown(5 * time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
