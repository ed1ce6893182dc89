package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/camelrate/pkg/formatting"
)

const (
	EnvRatingPromptsDir      = "CAMELRATE_RATING_PROMPTS_DIR"
	EnvRatingCategories      = "CAMELRATE_RATING_CATEGORIES"
	EnvRatingMaxConcurrency  = "CAMELRATE_RATING_MAX_CONCURRENCY"
	EnvRatingGoldenLimit     = "CAMELRATE_RATING_GOLDEN_LIMIT"
	EnvRatingFetchTimeout    = "CAMELRATE_RATING_FETCH_TIMEOUT"
	EnvRatingMaxImageSize    = "CAMELRATE_RATING_MAX_IMAGE_SIZE"
	EnvRatingFingerprintEdge = "CAMELRATE_RATING_FINGERPRINT_EDGE"
	EnvRatingWriteTimeout    = "CAMELRATE_RATING_WRITE_TIMEOUT"
)

// RatingConfig configures the rating pipeline.
type RatingConfig struct {
	// PromptsDir overrides the embedded prompt templates when set.
	PromptsDir string `toml:"prompts_dir"`
	// Categories restricts rating to a subset of the available templates.
	Categories []string `toml:"categories"`
	// MaxConcurrency bounds concurrent category calls; 0 means unbounded.
	MaxConcurrency  int    `toml:"max_concurrency"`
	GoldenLimit     int    `toml:"golden_limit"`
	FetchTimeout    string `toml:"fetch_timeout"`
	MaxImageSize    string `toml:"max_image_size"`
	FingerprintEdge int    `toml:"fingerprint_edge"`
	// WriteTimeout bounds background cache and audit writes.
	WriteTimeout string `toml:"write_timeout"`
}

// FetchTimeoutDuration returns FetchTimeout as a time.Duration.
func (c *RatingConfig) FetchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.FetchTimeout)
	return d
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *RatingConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// MaxImageBytes returns MaxImageSize in bytes.
func (c *RatingConfig) MaxImageBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxImageSize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *RatingConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *RatingConfig) Merge(overlay *RatingConfig) {
	if overlay.PromptsDir != "" {
		c.PromptsDir = overlay.PromptsDir
	}
	if overlay.Categories != nil {
		c.Categories = overlay.Categories
	}
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	if overlay.GoldenLimit != 0 {
		c.GoldenLimit = overlay.GoldenLimit
	}
	if overlay.FetchTimeout != "" {
		c.FetchTimeout = overlay.FetchTimeout
	}
	if overlay.MaxImageSize != "" {
		c.MaxImageSize = overlay.MaxImageSize
	}
	if overlay.FingerprintEdge != 0 {
		c.FingerprintEdge = overlay.FingerprintEdge
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
}

func (c *RatingConfig) loadDefaults() {
	if c.GoldenLimit == 0 {
		c.GoldenLimit = 3
	}
	if c.FetchTimeout == "" {
		c.FetchTimeout = "20s"
	}
	if c.MaxImageSize == "" {
		c.MaxImageSize = "20MB"
	}
	if c.FingerprintEdge == 0 {
		c.FingerprintEdge = 512
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "10s"
	}
}

func (c *RatingConfig) loadEnv() {
	if v := os.Getenv(EnvRatingPromptsDir); v != "" {
		c.PromptsDir = v
	}
	if v := os.Getenv(EnvRatingCategories); v != "" {
		c.Categories = c.Categories[:0]
		for _, cat := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(cat); trimmed != "" {
				c.Categories = append(c.Categories, trimmed)
			}
		}
	}
	if v := os.Getenv(EnvRatingMaxConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrency = n
		}
	}
	if v := os.Getenv(EnvRatingGoldenLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.GoldenLimit = n
		}
	}
	if v := os.Getenv(EnvRatingFetchTimeout); v != "" {
		c.FetchTimeout = v
	}
	if v := os.Getenv(EnvRatingMaxImageSize); v != "" {
		c.MaxImageSize = v
	}
	if v := os.Getenv(EnvRatingFingerprintEdge); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FingerprintEdge = n
		}
	}
	if v := os.Getenv(EnvRatingWriteTimeout); v != "" {
		c.WriteTimeout = v
	}
}

func (c *RatingConfig) validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative")
	}
	if c.GoldenLimit < 0 {
		return fmt.Errorf("golden_limit cannot be negative")
	}
	if c.FingerprintEdge < 32 {
		return fmt.Errorf("fingerprint_edge must be at least 32")
	}
	if _, err := time.ParseDuration(c.FetchTimeout); err != nil {
		return fmt.Errorf("invalid fetch_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.WriteTimeout); err != nil {
		return fmt.Errorf("invalid write_timeout: %w", err)
	}
	if _, err := formatting.ParseBytes(c.MaxImageSize); err != nil {
		return fmt.Errorf("invalid max_image_size: %w", err)
	}
	return nil
}
