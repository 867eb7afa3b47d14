package payments

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hanapbahay/hanapbahay/internal/platform/httpx"
)

// Handler serves a booking's payment history.
type Handler struct {
	logger *slog.Logger
	ledger *Ledger
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, ledger *Ledger) *Handler {
	return &Handler{logger: logger, ledger: ledger}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/bookings/{id}/payments", h.list)
}

type paymentView struct {
	ID            string  `json:"id"`
	PaymentMonth  string  `json:"payment_month"`
	Amount        float64 `json:"amount"`
	LateFee       float64 `json:"late_fee,omitempty"`
	TotalAmount   float64 `json:"total_amount"`
	DueDate       string  `json:"due_date"`
	PaidDate      string  `json:"paid_date,omitempty"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	ReceiptNumber string  `json:"receipt_number,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ps, err := h.ledger.PaymentsForBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]paymentView, 0, len(ps))
	for _, p := range ps {
		v := paymentView{
			ID:            p.ID,
			PaymentMonth:  p.PaymentMonth,
			Amount:        p.Amount,
			LateFee:       p.LateFee,
			TotalAmount:   p.TotalAmount,
			DueDate:       p.DueDate.Format("2006-01-02"),
			Status:        string(p.Status),
			PaymentMethod: p.PaymentMethod,
			ReceiptNumber: p.ReceiptNumber,
			Notes:         p.Notes,
		}
		if p.PaidDate != nil {
			v.PaidDate = p.PaidDate.Format("2006-01-02")
		}
		views = append(views, v)
	}
	httpx.JSON(w, http.StatusOK, views)
}
