package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/camelrate/internal/api"
	"github.com/JaimeStill/camelrate/internal/config"
	"github.com/JaimeStill/camelrate/internal/infrastructure"
	"github.com/JaimeStill/camelrate/internal/observability"
	"github.com/JaimeStill/camelrate/pkg/handlers"
	"github.com/JaimeStill/camelrate/pkg/module"
	"github.com/JaimeStill/camelrate/web/scalar"
)

// Server owns the infrastructure, the mounted API and docs modules, and the listener.
type Server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	docsModule, err := scalar.NewModule("/scalar", cfg.API.OpenAPI.Title, cfg.API.BasePath+"/openapi.json")
	if err != nil {
		return nil, err
	}

	router := module.NewRouter()
	router.Mount(apiModule)
	router.Mount(docsModule)
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.HandleNative("GET /readyz", readiness(infra))
	router.Handle("GET /metrics", promhttp.Handler())

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"vision_provider", cfg.Vision.Provider,
		"audit_mode", cfg.Audit.Mode,
	)

	return &Server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, observability.Middleware()(router), infra.Logger),
	}, nil
}

// readiness reports 503 until startup hooks finish and while the database is unreachable.
func readiness(infra *infrastructure.Infrastructure) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ready"
		switch {
		case !infra.Lifecycle.Ready():
			status = "starting"
		case infra.Database.Ping(r.Context()) != nil:
			status = "database unavailable"
		}

		code := http.StatusOK
		if status != "ready" {
			code = http.StatusServiceUnavailable
		}
		handlers.RespondJSON(w, code, map[string]string{"status": status})
	}
}

func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()
	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown", "timeout", timeout)
	return s.infra.Lifecycle.Shutdown(timeout)
}
