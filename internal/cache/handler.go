package cache

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/camelrate/pkg/handlers"
	"github.com/JaimeStill/camelrate/pkg/pagination"
	"github.com/JaimeStill/camelrate/pkg/routes"
)

// Handler provides operator endpoints for the result cache.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "cache"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for cache endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/cache",
		Tags:        []string{"Cache"},
		Description: "Inspect and invalidate fingerprint-keyed outcomes",
		Schemas:     schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: docs.list},
			{Method: "GET", Pattern: "/{fingerprint}", Handler: h.Find, OpenAPI: docs.find},
			{Method: "DELETE", Pattern: "/{fingerprint}", Handler: h.Invalidate, OpenAPI: docs.invalidate},
		},
	}
}

// List returns cached outcomes, newest first, optionally filtered by is_valid.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns the cached outcome for a fingerprint.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	entry, err := h.sys.Lookup(r.Context(), r.PathValue("fingerprint"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

// Invalidate removes the cached outcome so the next request re-rates the image.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Invalidate(r.Context(), r.PathValue("fingerprint")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
