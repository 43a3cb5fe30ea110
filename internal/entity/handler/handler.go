// Package handler wires entity read endpoints to the entity service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sanctionwatch/internal/entity/models"
	dErrors "sanctionwatch/pkg/domain-errors"
	"sanctionwatch/pkg/platform/httputil"
)

// Service defines the entity operations the HTTP layer needs.
type Service interface {
	Search(ctx context.Context, f models.SearchFilters) (*models.SearchResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SanctionedEntity, error)
	Stats(ctx context.Context) (*models.SourceStats, error)
}

// Handler serves the search, detail, and stats endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts entity endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/search", h.HandleSearch)
	r.Get("/entities/{entityID}", h.HandleGet)
	r.Get("/admin/stats", h.HandleStats)
}

// HandleSearch handles POST /search requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[SearchRequest](w, r, h.logger)
	if !ok {
		return
	}

	filters, err := req.Filters()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Search(ctx, filters)
	if err != nil {
		h.logger.ErrorContext(ctx, "entity search failed", "name", req.Name, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleGet handles GET /entities/{entityID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entity id"))
		return
	}

	entity, err := h.service.Get(ctx, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "entity lookup failed", "entity_id", id, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entity)
}

// HandleStats handles GET /admin/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "stats aggregation failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
