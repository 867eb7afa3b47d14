package jobs

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hanapbahay/hanapbahay/internal/platform/httpx"
)

// Handler exposes operational job triggers.
type Handler struct {
	logger *slog.Logger
	client *Client
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, client *Client) *Handler {
	return &Handler{logger: logger, client: client}
}

// MountRoutes registers job trigger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/jobs/termination-sweep", h.triggerSweep)
	r.Post("/jobs/rent-due-scan", h.triggerRentDueScan)
}

func (h *Handler) triggerSweep(w http.ResponseWriter, r *http.Request) {
	info, err := h.client.EnqueueTerminationSweep(r.Context(), "api")
	if err != nil {
		h.logger.Error("enqueue termination sweep", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": info.ID})
}

func (h *Handler) triggerRentDueScan(w http.ResponseWriter, r *http.Request) {
	info, err := h.client.EnqueueRentDueScan(r.Context(), "api")
	if err != nil {
		h.logger.Error("enqueue rent due scan", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": info.ID})
}
