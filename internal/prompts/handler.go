package prompts

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/camelrate/internal/scoring"
	"github.com/JaimeStill/camelrate/internal/vision"
	"github.com/JaimeStill/camelrate/pkg/handlers"
	"github.com/JaimeStill/camelrate/pkg/routes"
)

// Handler provides HTTP endpoints for prompt inspection.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// PromptView is the rendered prompt for a category and gender.
type PromptView struct {
	Category     string           `json:"category"`
	Gender       scoring.Gender   `json:"gender"`
	SystemPrompt string           `json:"system_prompt"`
	Messages     []vision.Message `json:"predefined_messages"`
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "prompts"),
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/prompts",
		Tags:        []string{"Prompts"},
		Description: "Category prompt templates and golden examples",
		Schemas:     schemas,
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/categories", Handler: h.Categories, OpenAPI: docs.categories},
			{Method: "GET", Pattern: "/{category}", Handler: h.Find, OpenAPI: docs.find},
			{Method: "POST", Pattern: "/reload", Handler: h.Reload, OpenAPI: docs.reload},
		},
	}
}

// Categories returns the available rating categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.sys.Categories()
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, categories)
}

// Find renders the system prompt for a category, optionally for a gender.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	gender, err := scoring.ParseGender(r.URL.Query().Get("gender"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	category := r.PathValue("category")

	t, err := h.sys.Template(category)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	system, err := h.sys.SystemPrompt(r.Context(), category, gender)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, PromptView{
		Category:     category,
		Gender:       gender,
		SystemPrompt: system,
		Messages:     t.Messages,
	})
}

// Reload clears the template cache so edited files take effect.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	h.sys.Reload()
	w.WriteHeader(http.StatusNoContent)
}
