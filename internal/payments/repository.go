package payments

import "context"

// RepositoryPort defines data access for rent payments.
type RepositoryPort interface {
	// Create inserts a payment. Returns shared.ErrDuplicateMonth when a
	// payment already exists for the booking and month.
	Create(ctx context.Context, p *RentPayment) error
	// Update persists the full payment record.
	Update(ctx context.Context, p *RentPayment) error
	// GetByBookingMonth returns the payment for a booking and month key, or
	// nil when none exists.
	GetByBookingMonth(ctx context.Context, bookingID, month string) (*RentPayment, error)
	// ListByBooking returns all payments of a booking ordered by due date.
	ListByBooking(ctx context.Context, bookingID string) ([]RentPayment, error)
}
