// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/camelrate/internal/config"
	"github.com/JaimeStill/camelrate/internal/infrastructure"
	"github.com/JaimeStill/camelrate/pkg/middleware"
	"github.com/JaimeStill/camelrate/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg.API.Pagination, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, cfg, domain, runtime); err != nil {
		return nil, err
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, fmt.Errorf("api module: %w", err)
	}
	m.Use(
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
		middleware.Identity(cfg.API.JWTSecret, runtime.Logger),
	)

	return m, nil
}
