package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hanapbahay/hanapbahay/internal/bookings"
	"github.com/hanapbahay/hanapbahay/internal/deposit"
	"github.com/hanapbahay/hanapbahay/internal/events"
	"github.com/hanapbahay/hanapbahay/internal/payments"
	"github.com/hanapbahay/hanapbahay/internal/shared"
)

type memoryBookingRepo struct {
	mu    sync.Mutex
	items map[string]bookings.Booking
}

func newMemoryBookingRepo() *memoryBookingRepo {
	return &memoryBookingRepo{items: make(map[string]bookings.Booking)}
}

func (r *memoryBookingRepo) put(b bookings.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.ID] = b
}

func (r *memoryBookingRepo) Get(ctx context.Context, id string) (*bookings.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, shared.ErrNotFound)
	}
	cp := b
	return &cp, nil
}

func (r *memoryBookingRepo) ListCountdownPending(ctx context.Context) ([]bookings.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) ListActiveWithAdvance(ctx context.Context) ([]bookings.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bookings.Booking
	for _, b := range r.items {
		if b.ActivePaid() && b.HasAdvanceDeposit() && b.RemainingAdvanceMonths > 0 {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryBookingRepo) Update(ctx context.Context, b *bookings.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[b.ID]; !ok {
		return fmt.Errorf("booking %s: %w", b.ID, shared.ErrNotFound)
	}
	r.items[b.ID] = *b
	return nil
}

type memoryPaymentRepo struct {
	mu      sync.Mutex
	items   map[string]payments.RentPayment
	failFor string
}

func newMemoryPaymentRepo() *memoryPaymentRepo {
	return &memoryPaymentRepo{items: make(map[string]payments.RentPayment)}
}

func (r *memoryPaymentRepo) Create(ctx context.Context, p *payments.RentPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.BookingID == p.BookingID && existing.PaymentMonth == p.PaymentMonth {
			return fmt.Errorf("booking %s month %s: %w", p.BookingID, p.PaymentMonth, shared.ErrDuplicateMonth)
		}
	}
	r.items[p.ID] = *p
	return nil
}

func (r *memoryPaymentRepo) Update(ctx context.Context, p *payments.RentPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = *p
	return nil
}

func (r *memoryPaymentRepo) GetByBookingMonth(ctx context.Context, bookingID, month string) (*payments.RentPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.BookingID == bookingID && p.PaymentMonth == month {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryPaymentRepo) ListByBooking(ctx context.Context, bookingID string) ([]payments.RentPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor != "" && bookingID == r.failFor {
		return nil, errors.New("store unavailable")
	}
	var out []payments.RentPayment
	for _, p := range r.items {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

type passthroughTx struct{}

func (passthroughTx) Serializable(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type noopAvailability struct{}

func (noopAvailability) RecomputeAvailability(ctx context.Context, propertyID string) error {
	return nil
}

type noopPublisher struct{}

func (noopPublisher) BookingCompleted(ctx context.Context, evt events.BookingCompleted) error {
	return nil
}

func dueBooking(id string, remaining int) bookings.Booking {
	return bookings.Booking{
		ID:                     id,
		TenantID:               "tenant-1",
		OwnerID:                "owner-1",
		PropertyID:             "prop-1",
		MonthlyRent:            10000,
		StartDate:              time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Status:                 bookings.StatusApproved,
		PaymentStatus:          bookings.PaymentPaid,
		AdvanceDepositMonths:   3,
		RemainingAdvanceMonths: remaining,
	}
}

func newScanJob(bookingRepo *memoryBookingRepo, paymentRepo *memoryPaymentRepo) *RentDueScanJob {
	svc := deposit.NewService(bookingRepo, paymentRepo, passthroughTx{}, shared.NewKeyedMutex(),
		noopAvailability{}, noopPublisher{}, slog.Default())
	return NewRentDueScanJob(bookingRepo, payments.NewLedger(paymentRepo), svc, nil, slog.Default())
}

func TestRentDueScanCoversDueMonth(t *testing.T) {
	bookingRepo := newMemoryBookingRepo()
	paymentRepo := newMemoryPaymentRepo()
	bookingRepo.put(dueBooking("b1", 2))
	job := newScanJob(bookingRepo, paymentRepo)
	ctx := context.Background()

	require.NoError(t, job.Run(ctx))

	ps, _ := paymentRepo.ListByBooking(ctx, "b1")
	require.Len(t, ps, 1)
	require.Equal(t, "2024-02", ps[0].PaymentMonth)
	require.Equal(t, payments.StatusPaid, ps[0].Status)
	require.Equal(t, payments.MethodAdvanceDeposit, ps[0].PaymentMethod)

	b, _ := bookingRepo.Get(ctx, "b1")
	require.Equal(t, 1, b.RemainingAdvanceMonths)

	// The next run advances to the following month.
	require.NoError(t, job.Run(ctx))
	ps, _ = paymentRepo.ListByBooking(ctx, "b1")
	require.Len(t, ps, 2)
	require.Equal(t, "2024-03", ps[1].PaymentMonth)

	b, _ = bookingRepo.Get(ctx, "b1")
	require.Equal(t, 0, b.RemainingAdvanceMonths)
	require.Equal(t, bookings.StatusCompleted, b.Status)

	// Exhausted bookings drop out of the scan.
	require.NoError(t, job.Run(ctx))
	ps, _ = paymentRepo.ListByBooking(ctx, "b1")
	require.Len(t, ps, 2)
}

func TestRentDueScanSkipsBookingsNotYetDue(t *testing.T) {
	bookingRepo := newMemoryBookingRepo()
	paymentRepo := newMemoryPaymentRepo()
	b := dueBooking("b1", 2)
	b.StartDate = time.Now().AddDate(0, 0, -7)
	bookingRepo.put(b)
	job := newScanJob(bookingRepo, paymentRepo)

	require.NoError(t, job.Run(context.Background()))

	ps, _ := paymentRepo.ListByBooking(context.Background(), "b1")
	require.Empty(t, ps)
}

func TestRentDueScanIsolatesFailures(t *testing.T) {
	bookingRepo := newMemoryBookingRepo()
	paymentRepo := newMemoryPaymentRepo()
	bookingRepo.put(dueBooking("b1", 1))
	bookingRepo.put(dueBooking("b2", 1))
	paymentRepo.failFor = "b1"
	job := newScanJob(bookingRepo, paymentRepo)
	ctx := context.Background()

	require.NoError(t, job.Run(ctx))

	ps, _ := paymentRepo.ListByBooking(ctx, "b2")
	require.Len(t, ps, 1)
	require.Equal(t, payments.StatusPaid, ps[0].Status)
}
