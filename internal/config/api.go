package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/camelrate/pkg/middleware"
	"github.com/JaimeStill/camelrate/pkg/openapi"
	"github.com/JaimeStill/camelrate/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CAMELRATE_CORS_ENABLED",
	Origins:          "CAMELRATE_CORS_ORIGINS",
	AllowedMethods:   "CAMELRATE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CAMELRATE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CAMELRATE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CAMELRATE_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.Env{
	Title:       "CAMELRATE_OPENAPI_TITLE",
	Description: "CAMELRATE_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "CAMELRATE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "CAMELRATE_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, identity, CORS, pagination, and API
// document settings.
type APIConfig struct {
	BasePath string `toml:"base_path"`
	// JWTSecret enables bearer token identity when set. Requests without a
	// valid token are treated as anonymous.
	JWTSecret  string                `toml:"jwt_secret"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
	OpenAPI    openapi.Config        `toml:"openapi"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.JWTSecret != "" {
		c.JWTSecret = overlay.JWTSecret
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("CAMELRATE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("CAMELRATE_API_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
}
