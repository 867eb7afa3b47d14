// Package deposit owns the advance-deposit counters on a booking: deduction,
// exhaustion auto-completion, and covering a monthly rent obligation with a
// pre-paid month.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hanapbahay/hanapbahay/internal/bookings"
	"github.com/hanapbahay/hanapbahay/internal/events"
	"github.com/hanapbahay/hanapbahay/internal/payments"
	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// AvailabilityRecomputer recalculates a listing's availability.
type AvailabilityRecomputer interface {
	RecomputeAvailability(ctx context.Context, propertyID string) error
}

// EventPublisher dispatches UI-refresh events.
type EventPublisher interface {
	BookingCompleted(ctx context.Context, evt events.BookingCompleted) error
}

// TxRunner executes a read-modify-write section inside a serializable
// transaction. The keyed mutex only orders writers in this process; the
// transaction is what guards against lost updates across processes.
type TxRunner interface {
	Serializable(ctx context.Context, fn func(context.Context) error) error
}

// Service is the advance deposit ledger.
type Service struct {
	bookingRepo  bookings.RepositoryPort
	paymentRepo  payments.RepositoryPort
	tx           TxRunner
	locks        *shared.KeyedMutex
	availability AvailabilityRecomputer
	publisher    EventPublisher
	logger       *slog.Logger

	now func() time.Time
}

// NewService builds a Service instance.
func NewService(bookingRepo bookings.RepositoryPort, paymentRepo payments.RepositoryPort,
	tx TxRunner, locks *shared.KeyedMutex, availability AvailabilityRecomputer,
	publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		tx:           tx,
		locks:        locks,
		availability: availability,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// UseResult is the projection returned after a deduction.
type UseResult struct {
	RemainingAdvanceMonths int  `json:"remaining_advance_months"`
	AutoCompleted          bool `json:"auto_completed"`
}

// UseAdvanceMonths deducts monthsToUse from the booking's remaining advance
// months. Driving the counter to zero on an active paid booking completes the
// lease as a side effect.
func (s *Service) UseAdvanceMonths(ctx context.Context, bookingID string, monthsToUse int) (*UseResult, error) {
	if monthsToUse < 1 {
		monthsToUse = 1
	}
	var (
		res     *UseResult
		effects []shared.Effect
	)
	unlock := s.locks.Lock(bookingID)
	err := s.tx.Serializable(ctx, func(ctx context.Context) error {
		var err error
		res, effects, err = s.useLocked(ctx, bookingID, monthsToUse)
		return err
	})
	unlock()
	if err != nil {
		return nil, err
	}
	shared.RunEffects(ctx, s.logger, effects)
	return res, nil
}

func (s *Service) useLocked(ctx context.Context, bookingID string, monthsToUse int) (*UseResult, []shared.Effect, error) {
	b, err := s.bookingRepo.Get(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	effects, err := s.deduct(ctx, b, monthsToUse)
	if err != nil {
		return nil, nil, err
	}
	return &UseResult{
		RemainingAdvanceMonths: b.RemainingAdvanceMonths,
		AutoCompleted:          b.Status == bookings.StatusCompleted,
	}, effects, nil
}

// deduct validates and persists a counter deduction on an already-locked
// booking, returning the post-commit effects of any auto-completion.
func (s *Service) deduct(ctx context.Context, b *bookings.Booking, monthsToUse int) ([]shared.Effect, error) {
	if !b.HasAdvanceDeposit() {
		return nil, fmt.Errorf("booking %s: %w", b.ID, shared.ErrNoAdvanceDeposit)
	}
	if b.RemainingAdvanceMonths < monthsToUse {
		return nil, shared.InsufficientMonthsError(b.RemainingAdvanceMonths, monthsToUse)
	}

	b.RemainingAdvanceMonths -= monthsToUse
	b.UpdatedAt = s.now()
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("persist deduction: %w", err)
	}

	if b.RemainingAdvanceMonths == 0 && b.ActivePaid() {
		return s.completeExhausted(ctx, b, monthsToUse)
	}
	return nil, nil
}

// completeExhausted finishes a lease whose advance months ran out.
func (s *Service) completeExhausted(ctx context.Context, b *bookings.Booking, monthsUsed int) ([]shared.Effect, error) {
	now := s.now()
	b.Status = bookings.StatusCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}

	evt := events.BookingCompleted{
		BookingID:   b.ID,
		PropertyID:  b.PropertyID,
		TenantID:    b.TenantID,
		OwnerID:     b.OwnerID,
		Reason:      events.ReasonAdvanceExhausted,
		MonthsUsed:  monthsUsed,
		CompletedAt: now,
	}
	return []shared.Effect{
		{Name: "availability", Run: func(ctx context.Context) error {
			return s.availability.RecomputeAvailability(ctx, b.PropertyID)
		}},
		{Name: "event", Run: func(ctx context.Context) error {
			return s.publisher.BookingCompleted(ctx, evt)
		}},
	}, nil
}

// CoverResult reports whether an advance month settled the given month.
type CoverResult struct {
	UsedAdvanceMonth       bool                  `json:"used_advance_month"`
	RemainingAdvanceMonths int                   `json:"remaining_advance_months"`
	Payment                *payments.RentPayment `json:"-"`
}

// CoverMonthForPayment settles one due month with an advance month. It no-ops
// when nothing remains on the counter or when the month is already paid, so a
// repeated call for the same month never spends a second month. Deduction and
// payment write commit or roll back together.
func (s *Service) CoverMonthForPayment(ctx context.Context, bookingID, paymentMonth string) (*CoverResult, error) {
	if _, err := shared.ParseMonthKey(paymentMonth); err != nil {
		return nil, err
	}
	var (
		res     *CoverResult
		effects []shared.Effect
	)
	unlock := s.locks.Lock(bookingID)
	err := s.tx.Serializable(ctx, func(ctx context.Context) error {
		var err error
		res, effects, err = s.coverLocked(ctx, bookingID, paymentMonth)
		return err
	})
	unlock()
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateMonth) {
			// Lost the race to another writer; the month is covered and the
			// rolled-back transaction spent nothing.
			b, gerr := s.bookingRepo.Get(ctx, bookingID)
			if gerr != nil {
				return nil, gerr
			}
			return &CoverResult{UsedAdvanceMonth: false, RemainingAdvanceMonths: b.RemainingAdvanceMonths}, nil
		}
		return nil, err
	}
	shared.RunEffects(ctx, s.logger, effects)
	return res, nil
}

func (s *Service) coverLocked(ctx context.Context, bookingID, paymentMonth string) (*CoverResult, []shared.Effect, error) {
	b, err := s.bookingRepo.Get(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if !b.HasAdvanceDeposit() || b.RemainingAdvanceMonths <= 0 {
		return &CoverResult{UsedAdvanceMonth: false, RemainingAdvanceMonths: b.RemainingAdvanceMonths}, nil, nil
	}

	existing, err := s.paymentRepo.GetByBookingMonth(ctx, bookingID, paymentMonth)
	if err != nil {
		return nil, nil, fmt.Errorf("look up payment for %s: %w", paymentMonth, err)
	}
	if existing != nil && existing.Status == payments.StatusPaid {
		return &CoverResult{UsedAdvanceMonth: false, RemainingAdvanceMonths: b.RemainingAdvanceMonths}, nil, nil
	}

	// Consume the month first, then write the payment it pays for. The
	// surrounding transaction rolls both back on any failure.
	effects, err := s.deduct(ctx, b, 1)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	var paid *payments.RentPayment
	if existing != nil {
		existing.Status = payments.StatusPaid
		existing.PaymentMethod = payments.MethodAdvanceDeposit
		existing.PaidDate = &now
		existing.ReceiptNumber = payments.AdvanceReceipt(existing.ReceiptNumber)
		existing.Notes = payments.AdvanceNote
		existing.UpdatedAt = now
		if err := s.paymentRepo.Update(ctx, existing); err != nil {
			return nil, nil, fmt.Errorf("mark payment paid: %w", err)
		}
		paid = existing
	} else {
		monthStart, _ := shared.ParseMonthKey(paymentMonth)
		due := shared.AddMonthsAnchored(monthStart, 0, b.StartDate.Day())
		paid = &payments.RentPayment{
			ID:            uuid.NewString(),
			BookingID:     b.ID,
			TenantID:      b.TenantID,
			OwnerID:       b.OwnerID,
			PropertyID:    b.PropertyID,
			Amount:        b.MonthlyRent,
			TotalAmount:   b.MonthlyRent,
			PaymentMonth:  paymentMonth,
			DueDate:       due,
			PaidDate:      &now,
			Status:        payments.StatusPaid,
			PaymentMethod: payments.MethodAdvanceDeposit,
			ReceiptNumber: payments.AdvanceReceipt(""),
			Notes:         payments.AdvanceNote,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.paymentRepo.Create(ctx, paid); err != nil {
			return nil, nil, fmt.Errorf("create payment: %w", err)
		}
	}

	return &CoverResult{
		UsedAdvanceMonth:       true,
		RemainingAdvanceMonths: b.RemainingAdvanceMonths,
		Payment:                paid,
	}, effects, nil
}

// Info is the read-only advance deposit projection. Zero counters marshal as
// absent to keep the mobile UI's conditional rendering simple.
type Info struct {
	AdvanceDepositMonths   int  `json:"advance_deposit_months,omitempty"`
	RemainingAdvanceMonths int  `json:"remaining_advance_months,omitempty"`
	HasAdvanceDeposit      bool `json:"has_advance_deposit"`
}

// Info returns the advance deposit projection for a booking.
func (s *Service) Info(ctx context.Context, bookingID string) (*Info, error) {
	b, err := s.bookingRepo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &Info{
		AdvanceDepositMonths:   b.AdvanceDepositMonths,
		RemainingAdvanceMonths: b.RemainingAdvanceMonths,
		HasAdvanceDeposit:      b.HasAdvanceDeposit(),
	}, nil
}
