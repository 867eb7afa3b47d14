package bookings

import "context"

// RepositoryPort defines data access for bookings.
type RepositoryPort interface {
	Get(ctx context.Context, id string) (*Booking, error)
	// ListCountdownPending returns approved, paid bookings with an active
	// termination countdown.
	ListCountdownPending(ctx context.Context) ([]Booking, error)
	// ListActiveWithAdvance returns approved, paid bookings that still hold
	// spendable advance months.
	ListActiveWithAdvance(ctx context.Context) ([]Booking, error)
	// Update persists the full booking record.
	Update(ctx context.Context, b *Booking) error
}
