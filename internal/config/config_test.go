package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/camelrate/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080

[database]
host = "localhost"
port = 5432
name = "camelrate"
user = "camelrate"

[storage]
provider = "minio"
container_name = "archive"
endpoint = "localhost:9000"
access_key = "minio"
secret_key = "minio123"

[api]
base_path = "/api"

[api.pagination]
default_page_size = 25
max_page_size = 50

[vision]
provider = "gemini"

[rating]
categories = ["head", "neck"]
golden_limit = 2

[scoring.weights]
"HUMP SHAPE" = 5

[audit]
mode = "queue"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[vision]
model = "gemini-2.0-flash"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.ContainerName != "archive" {
		t.Errorf("storage container: got %s, want archive", cfg.Storage.ContainerName)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Vision.Model != "gemini-1.5-pro" {
		t.Errorf("vision model: got %s, want gemini-1.5-pro", cfg.Vision.Model)
	}
	if got := strings.Join(cfg.Rating.Categories, ","); got != "head,neck" {
		t.Errorf("rating categories: got %s, want head,neck", got)
	}
	if cfg.Rating.GoldenLimit != 2 {
		t.Errorf("golden limit: got %d, want 2", cfg.Rating.GoldenLimit)
	}
	if cfg.Scoring.Weights["HUMP SHAPE"] != 5 {
		t.Errorf("scoring weight: got %d, want 5", cfg.Scoring.Weights["HUMP SHAPE"])
	}
	if cfg.Audit.Mode != config.AuditQueue {
		t.Errorf("audit mode: got %s, want queue", cfg.Audit.Mode)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvCamelrateEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Vision.Model != "gemini-2.0-flash" {
		t.Errorf("vision model: got %s, want gemini-2.0-flash", cfg.Vision.Model)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("CAMELRATE_VISION_API_KEY", "sk-test")
	t.Setenv("CAMELRATE_RATING_CATEGORIES", "head, legs")
	t.Setenv("CAMELRATE_AUDIT_ARCHIVE_IMAGES", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Vision.Provider != config.ProviderOpenAI || cfg.Vision.Model != "gpt-4o" {
		t.Errorf("vision defaults: got %s/%s", cfg.Vision.Provider, cfg.Vision.Model)
	}
	if cfg.Vision.APIKey != "sk-test" {
		t.Errorf("vision api key from env: got %q", cfg.Vision.APIKey)
	}
	if got := strings.Join(cfg.Rating.Categories, ","); got != "head,legs" {
		t.Errorf("rating categories from env: got %s", got)
	}
	if cfg.Rating.MaxImageBytes() != 20*1024*1024 {
		t.Errorf("max image bytes: got %d", cfg.Rating.MaxImageBytes())
	}
	if cfg.Rating.WriteTimeoutDuration() != 10*time.Second {
		t.Errorf("write timeout: got %v", cfg.Rating.WriteTimeoutDuration())
	}
	if cfg.Storage.Enabled() {
		t.Error("storage should default to disabled")
	}
	if cfg.Audit.Mode != config.AuditDirect || !cfg.Audit.ArchiveImages {
		t.Errorf("audit: got mode %s archive %v", cfg.Audit.Mode, cfg.Audit.ArchiveImages)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("CAMELRATE_VERSION", "2.0.0")
	t.Setenv("CAMELRATE_SERVER_PORT", "3000")
	t.Setenv("CAMELRATE_VISION_PROVIDER", "openai")
	t.Setenv("CAMELRATE_VISION_MODEL", "gpt-4o-mini")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Vision.Provider != "openai" || cfg.Vision.Model != "gpt-4o-mini" {
		t.Errorf("vision: got %s/%s", cfg.Vision.Provider, cfg.Vision.Model)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `[server`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnvDefault(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}
	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "invalid port",
			config:  "[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "unknown vision provider",
			config:  "[vision]\nprovider = \"claude\"\n",
			wantErr: "unknown provider",
		},
		{
			name:    "bad image detail",
			config:  "[vision]\nimage_detail = \"ultra\"\n",
			wantErr: "image_detail",
		},
		{
			name:    "negative concurrency",
			config:  "[rating]\nmax_concurrency = -1\n",
			wantErr: "max_concurrency",
		},
		{
			name:    "bad image size",
			config:  "[rating]\nmax_image_size = \"huge\"\n",
			wantErr: "max_image_size",
		},
		{
			name:    "small fingerprint edge",
			config:  "[rating]\nfingerprint_edge = 8\n",
			wantErr: "fingerprint_edge",
		},
		{
			name:    "unknown audit mode",
			config:  "[audit]\nmode = \"kafka\"\n",
			wantErr: "mode must be",
		},
		{
			name:    "minio without credentials",
			config:  "[storage]\nprovider = \"minio\"\nendpoint = \"localhost:9000\"\n",
			wantErr: "access_key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestServerTimeouts(t *testing.T) {
	t.Setenv("CAMELRATE_SERVER_WRITE_TIMEOUT", "5m")

	cfg := config.ServerConfig{ReadHeaderTimeout: "2s"}
	cfg.Merge(&config.ServerConfig{IdleTimeout: "45s"})
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"read header explicit", cfg.ReadHeaderTimeoutDuration(), 2 * time.Second},
		{"read default", cfg.ReadTimeoutDuration(), 30 * time.Second},
		{"write from env", cfg.WriteTimeoutDuration(), 5 * time.Minute},
		{"idle from overlay", cfg.IdleTimeoutDuration(), 45 * time.Second},
		{"shutdown default", cfg.ShutdownTimeoutDuration(), 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	bad := config.ServerConfig{IdleTimeout: "forever"}
	if err := bad.Finalize(); err == nil || !strings.Contains(err.Error(), "idle_timeout") {
		t.Errorf("expected idle_timeout error, got %v", err)
	}
}
