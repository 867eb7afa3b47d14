package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hanapbahay/hanapbahay/internal/platform/db"
	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// Repository provides PostgreSQL backed persistence for bookings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) q(ctx context.Context) db.Querier {
	return db.QuerierFrom(ctx, r.pool)
}

const bookingColumns = `id, tenant_id, owner_id, property_id, monthly_rent, start_date,
status, payment_status, advance_deposit_months, remaining_advance_months,
termination_mode, termination_initiated_at, termination_end_date,
completed_at, created_at, updated_at`

// Get fetches a booking by id.
func (r *Repository) Get(ctx context.Context, id string) (*Booking, error) {
	row := r.q(ctx).QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking %s: %w", id, shared.ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

// ListCountdownPending returns approved, paid bookings with an active countdown.
func (r *Repository) ListCountdownPending(ctx context.Context) ([]Booking, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT `+bookingColumns+` FROM bookings
WHERE termination_mode = $1 AND status = $2 AND payment_status = $3
ORDER BY termination_end_date`, ModeCountdown, StatusApproved, PaymentPaid)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ListActiveWithAdvance returns approved, paid bookings that still hold advance months.
func (r *Repository) ListActiveWithAdvance(ctx context.Context) ([]Booking, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT `+bookingColumns+` FROM bookings
WHERE status = $1 AND payment_status = $2
AND advance_deposit_months > 0 AND COALESCE(remaining_advance_months, advance_deposit_months) > 0
ORDER BY start_date`, StatusApproved, PaymentPaid)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// Update persists the full booking record.
func (r *Repository) Update(ctx context.Context, b *Booking) error {
	var mode *TerminationMode
	var initiatedAt, endDate *time.Time
	if b.Termination != nil {
		mode = &b.Termination.Mode
		initiatedAt = &b.Termination.InitiatedAt
		endDate = &b.Termination.EndDate
	}
	tag, err := r.q(ctx).Exec(ctx, `UPDATE bookings SET
tenant_id = $2, owner_id = $3, property_id = $4, monthly_rent = $5, start_date = $6,
status = $7, payment_status = $8, advance_deposit_months = $9, remaining_advance_months = $10,
termination_mode = $11, termination_initiated_at = $12, termination_end_date = $13,
completed_at = $14, updated_at = $15
WHERE id = $1`,
		b.ID, b.TenantID, b.OwnerID, b.PropertyID, b.MonthlyRent, b.StartDate,
		b.Status, b.PaymentStatus, b.AdvanceDepositMonths, b.RemainingAdvanceMonths,
		mode, initiatedAt, endDate, b.CompletedAt, b.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", b.ID, shared.ErrNotFound)
	}
	return nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var remaining *int
	var mode *TerminationMode
	var initiatedAt, endDate *time.Time
	if err := row.Scan(&b.ID, &b.TenantID, &b.OwnerID, &b.PropertyID, &b.MonthlyRent, &b.StartDate,
		&b.Status, &b.PaymentStatus, &b.AdvanceDepositMonths, &remaining,
		&mode, &initiatedAt, &endDate, &b.CompletedAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	// Remaining defaults to the granted total until the first deduction writes it.
	if remaining != nil {
		b.RemainingAdvanceMonths = *remaining
	} else {
		b.RemainingAdvanceMonths = b.AdvanceDepositMonths
	}
	if mode != nil && initiatedAt != nil && endDate != nil {
		b.Termination = &Termination{Mode: *mode, InitiatedAt: *initiatedAt, EndDate: *endDate}
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
