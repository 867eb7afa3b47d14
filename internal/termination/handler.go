package termination

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/hanapbahay/hanapbahay/internal/platform/httpx"
)

// TenantHeader carries the caller's tenant id. Authentication proper lives in
// front of this API; the engine only checks tenant-booking ownership.
const TenantHeader = "X-Tenant-ID"

// Handler manages termination endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers termination routes. Ending a stay is rate limited per
// tenant; a stuck client retrying in a loop should not hammer reconciliation.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bookings/{id}/termination", h.countdownInfo)
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(5, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if tenant := r.Header.Get(TenantHeader); tenant != "" {
				return tenant, nil
			}
			return r.RemoteAddr, nil
		})))
		r.Post("/bookings/{id}/end-stay", h.endStay)
	})
}

func (h *Handler) endStay(w http.ResponseWriter, r *http.Request) {
	tenantID := r.Header.Get(TenantHeader)
	if tenantID == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing "+TenantHeader+" header")
		return
	}
	var req EndStayRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	res, err := h.service.EndRentalStay(r.Context(), chi.URLParam(r, "id"), tenantID, req.ImmediateLeave)
	if err != nil {
		h.logger.Error("end rental stay",
			slog.String("booking_id", chi.URLParam(r, "id")),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) countdownInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.CountdownInfo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("countdown info", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
}
