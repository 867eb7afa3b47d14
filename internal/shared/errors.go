package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotTenant indicates the caller is not the tenant on the booking.
	ErrNotTenant = errors.New("caller is not the booking tenant")
	// ErrBookingNotActive indicates the booking is not approved and paid.
	ErrBookingNotActive = errors.New("booking is not an active paid lease")
	// ErrNoAdvanceDeposit indicates the booking was created without advance months.
	ErrNoAdvanceDeposit = errors.New("booking has no advance deposit")
	// ErrAdvanceExhausted indicates every advance month has already been spent.
	ErrAdvanceExhausted = errors.New("advance deposit months exhausted")
	// ErrInsufficientMonths indicates fewer months remain than were requested.
	ErrInsufficientMonths = errors.New("insufficient advance months")
	// ErrTerminationActive indicates a countdown is already running for the booking.
	ErrTerminationActive = errors.New("termination countdown already active")
	// ErrDuplicateMonth indicates a rent payment already exists for the month.
	ErrDuplicateMonth = errors.New("payment already recorded for month")
)

// InsufficientMonthsError wraps ErrInsufficientMonths with the available and
// requested counts so callers can report both.
func InsufficientMonthsError(available, requested int) error {
	return fmt.Errorf("%w: %d available, %d requested", ErrInsufficientMonths, available, requested)
}

// UserSafeMessage returns a message safe to show to API clients. Known
// business rejections pass through; anything else is masked.
func UserSafeMessage(err error) string {
	for _, known := range []error{
		ErrNotFound,
		ErrNotTenant,
		ErrBookingNotActive,
		ErrNoAdvanceDeposit,
		ErrAdvanceExhausted,
		ErrInsufficientMonths,
		ErrTerminationActive,
		ErrDuplicateMonth,
	} {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	return "internal error"
}
