package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/camelrate/pkg/handlers"
	"github.com/JaimeStill/camelrate/pkg/openapi"
	"github.com/JaimeStill/camelrate/pkg/routes"
	"github.com/JaimeStill/camelrate/pkg/storage"
)

// imageHandler serves images archived with audit records.
type imageHandler struct {
	store  storage.System
	logger *slog.Logger
}

var downloadDoc = &openapi.Operation{
	OperationID: "downloadImage",
	Summary:     "Download an archived image",
	Parameters:  []*openapi.Parameter{openapi.PathParam("key", "Object key below images/")},
	Responses: map[int]*openapi.Response{
		200: {
			Description: "Image bytes",
			Content: map[string]*openapi.MediaType{
				"image/*": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
			},
		},
		400: openapi.ResponseRef(openapi.BadRequest),
		404: openapi.ResponseRef(openapi.NotFound),
	},
}

func newImageHandler(store storage.System, logger *slog.Logger) *imageHandler {
	return &imageHandler{
		store:  store,
		logger: logger.With("handler", "images"),
	}
}

func (h *imageHandler) routes() routes.Group {
	return routes.Group{
		Prefix:      "/images",
		Tags:        []string{"Images"},
		Description: "Images archived alongside audit records",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download, OpenAPI: downloadDoc},
		},
	}
}

func (h *imageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := "images/" + r.PathValue("key")
	if err := storage.ValidateKey(key); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer result.Body.Close()

	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}
	if result.ContentLength > 0 {
		w.Header().Set(
			"Content-Length",
			strconv.FormatInt(result.ContentLength, 10),
		)
	}
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, result.Body)
}
