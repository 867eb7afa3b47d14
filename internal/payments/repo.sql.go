package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hanapbahay/hanapbahay/internal/platform/db"
	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// Repository provides PostgreSQL backed persistence for rent payments. The
// rent_payments table carries a unique index on (booking_id, payment_month),
// so the at-most-one-payment-per-month rule holds even when two writers race
// past the application-level existence check.
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

const paymentColumns = `id, booking_id, tenant_id, owner_id, property_id,
amount, late_fee, total_amount, payment_month, due_date, paid_date,
status, payment_method, receipt_number, notes, created_at, updated_at`

// Create inserts a payment record.
func (r *Repository) Create(ctx context.Context, p *RentPayment) error {
	_, err := r.q(ctx).Exec(ctx, `INSERT INTO rent_payments (`+paymentColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID, p.BookingID, p.TenantID, p.OwnerID, p.PropertyID,
		p.Amount, p.LateFee, p.TotalAmount, p.PaymentMonth, p.DueDate, p.PaidDate,
		p.Status, p.PaymentMethod, p.ReceiptNumber, p.Notes, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("booking %s month %s: %w", p.BookingID, p.PaymentMonth, shared.ErrDuplicateMonth)
		}
		return err
	}
	return nil
}

// Update persists the full payment record.
func (r *Repository) Update(ctx context.Context, p *RentPayment) error {
	tag, err := r.q(ctx).Exec(ctx, `UPDATE rent_payments SET
amount = $2, late_fee = $3, total_amount = $4, payment_month = $5, due_date = $6,
paid_date = $7, status = $8, payment_method = $9, receipt_number = $10, notes = $11,
updated_at = $12
WHERE id = $1`,
		p.ID, p.Amount, p.LateFee, p.TotalAmount, p.PaymentMonth, p.DueDate,
		p.PaidDate, p.Status, p.PaymentMethod, p.ReceiptNumber, p.Notes, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s: %w", p.ID, shared.ErrNotFound)
	}
	return nil
}

// GetByBookingMonth returns the payment for a booking and month key, nil when absent.
func (r *Repository) GetByBookingMonth(ctx context.Context, bookingID, month string) (*RentPayment, error) {
	row := r.q(ctx).QueryRow(ctx, `SELECT `+paymentColumns+` FROM rent_payments
WHERE booking_id = $1 AND payment_month = $2`, bookingID, month)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// ListByBooking returns all payments of a booking ordered by due date.
func (r *Repository) ListByBooking(ctx context.Context, bookingID string) ([]RentPayment, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT `+paymentColumns+` FROM rent_payments
WHERE booking_id = $1 ORDER BY due_date`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RentPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanPayment(row pgx.Row) (*RentPayment, error) {
	var p RentPayment
	if err := row.Scan(&p.ID, &p.BookingID, &p.TenantID, &p.OwnerID, &p.PropertyID,
		&p.Amount, &p.LateFee, &p.TotalAmount, &p.PaymentMonth, &p.DueDate, &p.PaidDate,
		&p.Status, &p.PaymentMethod, &p.ReceiptNumber, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
