package config

import (
	"fmt"
	"os"
	"time"

	"github.com/JaimeStill/camelrate/pkg/database"
	"github.com/JaimeStill/camelrate/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCamelrateEnv             = "CAMELRATE_ENV"
	EnvCamelrateShutdownTimeout = "CAMELRATE_SHUTDOWN_TIMEOUT"
	EnvCamelrateVersion         = "CAMELRATE_VERSION"
)

// DatabaseEnv maps database settings to CAMELRATE_DB_* variables. cmd/migrate shares it.
var DatabaseEnv = &database.Env{
	URL:             "CAMELRATE_DB_DSN",
	Host:            "CAMELRATE_DB_HOST",
	Port:            "CAMELRATE_DB_PORT",
	Name:            "CAMELRATE_DB_NAME",
	User:            "CAMELRATE_DB_USER",
	Password:        "CAMELRATE_DB_PASSWORD",
	SSLMode:         "CAMELRATE_DB_SSL_MODE",
	MaxOpenConns:    "CAMELRATE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CAMELRATE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CAMELRATE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CAMELRATE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "CAMELRATE_STORAGE_PROVIDER",
	ContainerName:    "CAMELRATE_STORAGE_CONTAINER_NAME",
	ConnectionString: "CAMELRATE_STORAGE_CONNECTION_STRING",
	Endpoint:         "CAMELRATE_STORAGE_ENDPOINT",
	AccessKey:        "CAMELRATE_STORAGE_ACCESS_KEY",
	SecretKey:        "CAMELRATE_STORAGE_SECRET_KEY",
	UseSSL:           "CAMELRATE_STORAGE_USE_SSL",
}

// Config is the root configuration for the camelrate service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Vision          VisionConfig    `toml:"vision"`
	Rating          RatingConfig    `toml:"rating"`
	Scoring         ScoringConfig   `toml:"scoring"`
	Audit           AuditConfig     `toml:"audit"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the CAMELRATE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCamelrateEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(BaseConfigFile)
}

// LoadFrom behaves like Load with an explicit base file path.
func LoadFrom(base string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Vision.Merge(&overlay.Vision)
	c.Rating.Merge(&overlay.Rating)
	c.Scoring.Merge(&overlay.Scoring)
	c.Audit.Merge(&overlay.Audit)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Vision.Finalize(); err != nil {
		return fmt.Errorf("vision: %w", err)
	}
	if err := c.Rating.Finalize(); err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	if err := c.Audit.Finalize(); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCamelrateShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCamelrateVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCamelrateEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
