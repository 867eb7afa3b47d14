package httpx

import (
	"errors"
	"net/http"

	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// RespondError maps domain errors to RFC7807 responses. The detail always
// goes through shared.UserSafeMessage, so business-rule rejections carry
// their message and anything unexpected is masked.
func RespondError(w http.ResponseWriter, err error) {
	detail := shared.UserSafeMessage(err)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", detail)
	case errors.Is(err, shared.ErrNotTenant):
		Problem(w, http.StatusForbidden, "Forbidden", detail)
	case errors.Is(err, shared.ErrTerminationActive),
		errors.Is(err, shared.ErrDuplicateMonth):
		Problem(w, http.StatusConflict, "Conflict", detail)
	case errors.Is(err, shared.ErrBookingNotActive),
		errors.Is(err, shared.ErrNoAdvanceDeposit),
		errors.Is(err, shared.ErrAdvanceExhausted),
		errors.Is(err, shared.ErrInsufficientMonths):
		Problem(w, http.StatusUnprocessableEntity, "Rejected", detail)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", detail)
	}
}
