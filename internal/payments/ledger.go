package payments

import (
	"context"
	"sort"
	"time"

	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// Ledger exposes a booking's payment history and the next-due-date rule.
type Ledger struct {
	repo RepositoryPort
}

// NewLedger builds a Ledger over a payment repository.
func NewLedger(repo RepositoryPort) *Ledger {
	return &Ledger{repo: repo}
}

// PaymentsForBooking returns a booking's payments ordered by due date.
func (l *Ledger) PaymentsForBooking(ctx context.Context, bookingID string) ([]RentPayment, error) {
	return l.repo.ListByBooking(ctx, bookingID)
}

// NextDueDate computes the due date following lastPaid, preserving the lease
// start's day-of-month anchor and clamping to the end of shorter months. A
// nil lastPaid means no month has been paid yet; the first obligation then
// falls one month after the lease start.
func NextDueDate(leaseStart time.Time, lastPaid *time.Time) time.Time {
	anchor := leaseStart.Day()
	base := leaseStart
	if lastPaid != nil {
		base = *lastPaid
	}
	return shared.AddMonthsAnchored(base, 1, anchor)
}

// LatestPaid returns the paid payment with the newest due date, or nil.
func LatestPaid(ps []RentPayment) *RentPayment {
	var latest *RentPayment
	for i := range ps {
		if ps[i].Status != StatusPaid {
			continue
		}
		if latest == nil || ps[i].DueDate.After(latest.DueDate) {
			latest = &ps[i]
		}
	}
	return latest
}

// Unpaid filters payments still owed (pending, overdue or rejected) and
// returns them sorted by due date ascending. Covering must always settle the
// oldest obligation first.
func Unpaid(ps []RentPayment) []RentPayment {
	var out []RentPayment
	for _, p := range ps {
		if p.Unpaid() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

// PaidMonths returns the set of month keys already settled.
func PaidMonths(ps []RentPayment) map[string]bool {
	out := make(map[string]bool)
	for _, p := range ps {
		if p.Status == StatusPaid {
			out[p.PaymentMonth] = true
		}
	}
	return out
}
