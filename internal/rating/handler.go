package rating

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/validation"
	"github.com/JaimeStill/camelrate/pkg/handlers"
	"github.com/JaimeStill/camelrate/pkg/middleware"
	"github.com/JaimeStill/camelrate/pkg/routes"
)

// System defines the public contract for rating operations.
type System interface {
	Handler() *Handler

	Rate(ctx context.Context, req Request) (*Result, error)
	Compare(ctx context.Context, req CompareRequest) (*Comparison, error)
	Categories() []string
}

var _ System = (*Orchestrator)(nil)

// Handler provides HTTP endpoints for rating operations.
type Handler struct {
	sys    System
	table  *scoring.Table
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(sys System, table *scoring.Table, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		table:  table,
		logger: logger.With("handler", "rating"),
	}
}

// Routes returns the route group definition for rating endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/ratings",
		Tags:        []string{"Ratings"},
		Description: "Validate, rate and compare camel images",
		Schemas:     schemas,
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Rate, OpenAPI: docs.rate},
			{Method: "POST", Pattern: "/compare", Handler: h.Compare, OpenAPI: docs.compare},
			{Method: "GET", Pattern: "/weights", Handler: h.Weights, OpenAPI: docs.weights},
		},
	}
}

// Rate rates the image in the request body. Rejected images respond 400
// with the rejection payload.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	req.UserID = middleware.UserID(r.Context())

	result, err := h.sys.Rate(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Compare rates two images and reports the winner.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	req.UserID = middleware.UserID(r.Context())

	result, err := h.sys.Compare(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

type weightsView struct {
	Gender        scoring.Gender `json:"gender"`
	DefaultWeight int            `json:"default_weight"`
	Weights       map[string]int `json:"weights"`
	Categories    []string       `json:"categories"`
}

// Weights returns the attribute weights resolved for the gender query parameter.
func (h *Handler) Weights(w http.ResponseWriter, r *http.Request) {
	gender, err := scoring.ParseGender(r.URL.Query().Get("gender"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, weightsView{
		Gender:        gender,
		DefaultWeight: scoring.DefaultWeight,
		Weights:       h.table.Weights(gender),
		Categories:    h.sys.Categories(),
	})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var rejection *validation.Rejection
	if errors.As(err, &rejection) {
		h.logger.Info("image rejected", "reason", rejection.Error(), "cached", rejection.Cached)
		handlers.RespondJSON(w, http.StatusBadRequest, rejection)
		return
	}

	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}
