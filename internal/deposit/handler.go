package deposit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hanapbahay/hanapbahay/internal/platform/httpx"
)

// Handler manages advance deposit endpoints.
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

// MountRoutes registers deposit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bookings/{id}/advance-deposit", h.info)
	r.Post("/bookings/{id}/advance-deposit/use", h.useMonths)
	r.Post("/bookings/{id}/advance-deposit/cover", h.coverMonth)
}

func (h *Handler) info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("advance deposit info", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
}

func (h *Handler) useMonths(w http.ResponseWriter, r *http.Request) {
	var req UseAdvanceMonthsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if req.Months == 0 {
		req.Months = 1
	}
	res, err := h.service.UseAdvanceMonths(r.Context(), chi.URLParam(r, "id"), req.Months)
	if err != nil {
		h.logger.Error("use advance months", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) coverMonth(w http.ResponseWriter, r *http.Request) {
	var req CoverMonthRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	res, err := h.service.CoverMonthForPayment(r.Context(), chi.URLParam(r, "id"), req.PaymentMonth)
	if err != nil {
		h.logger.Error("cover month with advance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
