// Package handler exposes the admin endpoints that trigger and inspect
// synchronization runs.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	entitymodels "sanctionwatch/internal/entity/models"
	"sanctionwatch/internal/sync/models"
	"sanctionwatch/pkg/platform/httputil"
)

// historyLimit caps the sync history listing.
const historyLimit = 20

// Service defines the sync operations the HTTP layer needs.
type Service interface {
	Run(ctx context.Context, source entitymodels.ListSource) models.Result
	RunAll(ctx context.Context) models.AllResult
}

// HistoryReader lists recorded synchronization outcomes.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// Handler serves the sync trigger and history endpoints.
type Handler struct {
	service Service
	history HistoryReader
	logger  *slog.Logger
}

func New(service Service, history HistoryReader, logger *slog.Logger) *Handler {
	return &Handler{service: service, history: history, logger: logger}
}

// Register mounts sync endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/sync/all", h.HandleSyncAll)
	r.Post("/admin/sync/{source}", h.HandleSync)
	r.Get("/admin/sync-history", h.HandleHistory)
}

// HandleSync handles POST /admin/sync/{source} requests. Sync failures
// are reported in the response body, not as HTTP errors: the request
// itself succeeded.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	source, err := entitymodels.ParseListSource(chi.URLParam(r, "source"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result := h.service.Run(ctx, source)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleSyncAll handles POST /admin/sync/all requests.
func (h *Handler) HandleSyncAll(w http.ResponseWriter, r *http.Request) {
	result := h.service.RunAll(r.Context())
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleHistory handles GET /admin/sync-history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.history.Recent(ctx, historyLimit)
	if err != nil {
		h.logger.ErrorContext(ctx, "sync history listing failed", "error", err)
		httputil.WriteError(w, err)
		return
	}

	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}
