package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Vision providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

const (
	EnvVisionProvider   = "CAMELRATE_VISION_PROVIDER"
	EnvVisionModel      = "CAMELRATE_VISION_MODEL"
	EnvVisionAPIKey     = "CAMELRATE_VISION_API_KEY"
	EnvVisionBaseURL    = "CAMELRATE_VISION_BASE_URL"
	EnvVisionTimeout    = "CAMELRATE_VISION_TIMEOUT"
	EnvVisionMaxTokens  = "CAMELRATE_VISION_MAX_TOKENS"
	EnvVisionMaxRetries = "CAMELRATE_VISION_MAX_RETRIES"
	EnvVisionDetail     = "CAMELRATE_VISION_IMAGE_DETAIL"
)

var defaultModels = map[string]string{
	ProviderOpenAI: "gpt-4o",
	ProviderGemini: "gemini-1.5-pro",
}

// VisionConfig selects and configures the remote vision model.
type VisionConfig struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	BaseURL     string  `toml:"base_url"`
	Timeout     string  `toml:"timeout"`
	MaxTokens   int     `toml:"max_tokens"`
	MaxRetries  int     `toml:"max_retries"`
	Temperature float64 `toml:"temperature"`
	ImageDetail string  `toml:"image_detail"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *VisionConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *VisionConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	if c.Model == "" {
		c.Model = defaultModels[c.Provider]
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *VisionConfig) Merge(overlay *VisionConfig) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.ImageDetail != "" {
		c.ImageDetail = overlay.ImageDetail
	}
}

func (c *VisionConfig) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Timeout == "" {
		c.Timeout = "90s"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.ImageDetail == "" {
		c.ImageDetail = "high"
	}
}

func (c *VisionConfig) loadEnv() {
	if v := os.Getenv(EnvVisionProvider); v != "" {
		c.Provider = v
	}
	if v := os.Getenv(EnvVisionModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvVisionAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvVisionBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvVisionTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvVisionMaxTokens); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv(EnvVisionMaxRetries); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv(EnvVisionDetail); v != "" {
		c.ImageDetail = v
	}
}

func (c *VisionConfig) validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	switch c.ImageDetail {
	case "low", "high", "auto":
	default:
		return fmt.Errorf("image_detail must be low, high, or auto")
	}
	return nil
}
