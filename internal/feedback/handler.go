package feedback

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/camelrate/pkg/handlers"
	"github.com/JaimeStill/camelrate/pkg/middleware"
	"github.com/JaimeStill/camelrate/pkg/pagination"
	"github.com/JaimeStill/camelrate/pkg/routes"
)

// Handler provides HTTP endpoints for feedback operations.
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
		logger:     logger.With("handler", "feedback"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for feedback endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/feedback",
		Tags:        []string{"Feedback"},
		Description: "Expert corrections that become golden examples once approved",
		Schemas:     schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: docs.list},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: docs.find},
			{Method: "POST", Pattern: "", Handler: h.Submit, OpenAPI: docs.submit},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve, OpenAPI: docs.approve},
			{Method: "POST", Pattern: "/{id}/reject", Handler: h.Reject, OpenAPI: docs.reject},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: docs.remove},
		},
	}
}

// List returns a paginated list filtered by the category and status query
// parameters and ordered by sort (default newest first).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	page := pagination.PageRequestFromQuery(values, h.pagination)
	filters := FiltersFromQuery(values)

	result, err := h.sys.List(r.Context(), page, filters, values.Get("sort"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single correction by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	f, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// Submit records a new pending correction attributed to the caller.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var cmd SubmitCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	cmd.SubmittedBy = middleware.UserID(r.Context())

	f, err := h.sys.Submit(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, f)
}

// Approve promotes a pending correction to a golden example.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.sys.Approve)
}

// Reject marks a pending correction as rejected.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.sys.Reject)
}

func (h *Handler) review(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id uuid.UUID) (*Feedback, error),
) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	f, err := fn(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// Delete removes a correction by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
