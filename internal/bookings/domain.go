package bookings

import "time"

// BookingStatus enumerates booking lifecycle states.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus enumerates booking-level payment states.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

// TerminationMode discriminates the termination sub-state.
type TerminationMode string

// ModeCountdown is the only scheduled termination mode; an immediate leave
// never persists a termination record, it resolves the booking in one pass.
const ModeCountdown TerminationMode = "countdown"

// Termination is the scheduled early-exit sub-state. Modeling it as a single
// optional struct keeps the initiated/end/mode fields moving together;
// clearing one without the others cannot be expressed.
type Termination struct {
	Mode        TerminationMode
	InitiatedAt time.Time
	EndDate     time.Time
}

// Booking is a tenant's lease on a property.
type Booking struct {
	ID         string
	TenantID   string
	OwnerID    string
	PropertyID string

	MonthlyRent float64
	StartDate   time.Time

	Status        BookingStatus
	PaymentStatus PaymentStatus

	// AdvanceDepositMonths is the total granted at booking time and never
	// changes; RemainingAdvanceMonths is the spendable counter.
	AdvanceDepositMonths   int
	RemainingAdvanceMonths int

	Termination *Termination

	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActivePaid reports whether the lease is approved and paid up.
func (b *Booking) ActivePaid() bool {
	return b.Status == StatusApproved && b.PaymentStatus == PaymentPaid
}

// HasAdvanceDeposit reports whether any advance months were granted.
func (b *Booking) HasAdvanceDeposit() bool {
	return b.AdvanceDepositMonths > 0
}

// CountdownActive reports whether a termination countdown is running.
func (b *Booking) CountdownActive() bool {
	return b.Termination != nil && b.Termination.Mode == ModeCountdown
}
