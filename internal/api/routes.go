package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/camelrate/internal/config"
	"github.com/JaimeStill/camelrate/pkg/openapi"
	"github.com/JaimeStill/camelrate/pkg/routes"
)

// registerRoutes mounts every domain group on mux and serves the OpenAPI
// document describing them at /openapi.json.
func registerRoutes(
	mux *http.ServeMux,
	cfg *config.Config,
	domain *Domain,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Rating.Handler().Routes(),
		domain.Cache.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		domain.Feedback.Handler().Routes(),
	}

	if runtime.Storage != nil {
		groups = append(groups, newImageHandler(runtime.Storage, runtime.Logger).routes())
	}

	routes.Register(mux, groups...)

	spec := openapi.NewSpec(cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	routes.Describe(spec, groups...)

	doc, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("render openapi document: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(doc))
	return nil
}
