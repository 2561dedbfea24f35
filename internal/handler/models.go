package handler

import (
	"log/slog"
	"net/http"

	"github.com/krismatterz/ten-chat-sub000/internal/catalog"
	"github.com/krismatterz/ten-chat-sub000/internal/httputil"
)

// ModelsHandler serves the provider/model catalog
type ModelsHandler struct {
	registry *catalog.Registry
	logger   *slog.Logger
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(registry *catalog.Registry, logger *slog.Logger) *ModelsHandler {
	return &ModelsHandler{
		registry: registry,
		logger:   logger,
	}
}

type providerResponse struct {
	Name   string          `json:"name"`
	Models []catalog.Model `json:"models"`
}

type catalogResponse struct {
	Providers []providerResponse `json:"providers"`
}

// GetModels returns every provider and its models
// GET /api/models
func (h *ModelsHandler) GetModels(w http.ResponseWriter, r *http.Request) {
	resp := catalogResponse{Providers: []providerResponse{}}

	for _, name := range h.registry.Providers() {
		models, err := h.registry.Models(name)
		if err != nil {
			continue
		}
		resp.Providers = append(resp.Providers, providerResponse{
			Name:   name,
			Models: models,
		})
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
