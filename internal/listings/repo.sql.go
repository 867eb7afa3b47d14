package listings

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hanapbahay/hanapbahay/internal/platform/db"
	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// Repository provides PostgreSQL backed persistence for listings.
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

// HasApprovedBooking reports whether an approved booking holds the property.
func (r *Repository) HasApprovedBooking(ctx context.Context, propertyID string) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bookings WHERE property_id = $1 AND status = 'approved')`,
		propertyID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// SetAvailability updates the listing's availability flag.
func (r *Repository) SetAvailability(ctx context.Context, propertyID string, available bool) error {
	tag, err := r.q(ctx).Exec(ctx,
		`UPDATE properties SET is_available = $2, updated_at = $3 WHERE id = $1`,
		propertyID, available, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("property %s: %w", propertyID, shared.ErrNotFound)
	}
	return nil
}
