// Package termination orchestrates early lease exits: an immediate
// payout-and-leave that reconciles outstanding and future rent against the
// tenant's advance deposit months in one pass, or a scheduled countdown that
// a periodic sweep resolves once its end date passes.
package termination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hanapbahay/hanapbahay/internal/bookings"
	"github.com/hanapbahay/hanapbahay/internal/events"
	"github.com/hanapbahay/hanapbahay/internal/notify"
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

// Notifier delivers an in-app message from the tenant to the owner.
type Notifier interface {
	Notify(ctx context.Context, ownerID, tenantID, propertyID, text string) error
}

// TxRunner executes a read-modify-write section inside a serializable
// transaction. The keyed mutex only orders writers in this process; the
// transaction is what guards against lost updates across processes.
type TxRunner interface {
	Serializable(ctx context.Context, fn func(context.Context) error) error
}

// Service is the termination orchestrator.
type Service struct {
	bookingRepo  bookings.RepositoryPort
	paymentRepo  payments.RepositoryPort
	ledger       *payments.Ledger
	tx           TxRunner
	locks        *shared.KeyedMutex
	availability AvailabilityRecomputer
	notifier     Notifier
	publisher    EventPublisher
	logger       *slog.Logger

	now func() time.Time
}

// NewService builds a Service instance.
func NewService(bookingRepo bookings.RepositoryPort, paymentRepo payments.RepositoryPort,
	ledger *payments.Ledger, tx TxRunner, locks *shared.KeyedMutex,
	availability AvailabilityRecomputer, notifier Notifier, publisher EventPublisher,
	logger *slog.Logger) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		paymentRepo:  paymentRepo,
		ledger:       ledger,
		tx:           tx,
		locks:        locks,
		availability: availability,
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// EndStayResult reports the outcome of an end-stay request.
type EndStayResult struct {
	Mode                   string     `json:"mode"`
	DaysRemaining          int        `json:"days_remaining,omitempty"`
	RemainingAdvanceMonths int        `json:"remaining_advance_months"`
	MonthsUsed             int        `json:"months_used,omitempty"`
	TerminationEndDate     *time.Time `json:"termination_end_date,omitempty"`
}

// EndRentalStay ends a tenant's lease early. With immediateLeave the booking
// resolves to completed in one reconciliation pass; otherwise a countdown of
// one calendar month per remaining advance month is scheduled and the lease
// stays active until the sweep resolves it. Re-initiating a running countdown
// is rejected; escalating it to an immediate leave is allowed.
func (s *Service) EndRentalStay(ctx context.Context, bookingID, tenantID string, immediateLeave bool) (*EndStayResult, error) {
	var (
		res     *EndStayResult
		effects []shared.Effect
	)
	unlock := s.locks.Lock(bookingID)
	err := s.tx.Serializable(ctx, func(ctx context.Context) error {
		var err error
		res, effects, err = s.endLocked(ctx, bookingID, tenantID, immediateLeave)
		return err
	})
	unlock()
	if err != nil {
		return nil, err
	}
	shared.RunEffects(ctx, s.logger, effects)
	return res, nil
}

func (s *Service) endLocked(ctx context.Context, bookingID, tenantID string, immediateLeave bool) (*EndStayResult, []shared.Effect, error) {
	b, err := s.bookingRepo.Get(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if b.TenantID != tenantID {
		return nil, nil, fmt.Errorf("booking %s: %w", bookingID, shared.ErrNotTenant)
	}
	if !b.ActivePaid() {
		return nil, nil, fmt.Errorf("booking %s is %s/%s: %w", bookingID, b.Status, b.PaymentStatus, shared.ErrBookingNotActive)
	}
	if !b.HasAdvanceDeposit() {
		return nil, nil, fmt.Errorf("booking %s: %w", bookingID, shared.ErrNoAdvanceDeposit)
	}
	if b.RemainingAdvanceMonths <= 0 {
		return nil, nil, fmt.Errorf("booking %s: %w", bookingID, shared.ErrAdvanceExhausted)
	}
	if b.CountdownActive() && !immediateLeave {
		return nil, nil, fmt.Errorf("booking %s ends %s: %w",
			bookingID, b.Termination.EndDate.Format("2006-01-02"), shared.ErrTerminationActive)
	}

	if immediateLeave {
		monthsUsed := b.RemainingAdvanceMonths
		effects, err := s.reconcileImmediate(ctx, b, monthsUsed)
		if err != nil {
			return nil, nil, err
		}
		return &EndStayResult{Mode: "immediate", MonthsUsed: monthsUsed}, effects, nil
	}

	now := s.now()
	end := shared.AddMonthsAnchored(now, b.RemainingAdvanceMonths, now.Day())
	b.Termination = &bookings.Termination{
		Mode:        bookings.ModeCountdown,
		InitiatedAt: now,
		EndDate:     end,
	}
	b.UpdatedAt = now
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, nil, fmt.Errorf("schedule countdown: %w", err)
	}

	text := fmt.Sprintf(
		"I have scheduled the end of my stay. My %d remaining advance deposit month(s) will carry the lease until %s.",
		b.RemainingAdvanceMonths, end.Format("January 2, 2006"))
	effects := []shared.Effect{
		{Name: "notify-owner", Run: func(ctx context.Context) error {
			return s.notifier.Notify(ctx, b.OwnerID, b.TenantID, b.PropertyID, text)
		}},
	}
	return &EndStayResult{
		Mode:                   "countdown",
		DaysRemaining:          shared.DaysUntil(now, end),
		RemainingAdvanceMonths: b.RemainingAdvanceMonths,
		TerminationEndDate:     &end,
	}, effects, nil
}

// reconcileImmediate spends monthsToUse advance months against the booking's
// rent obligations, oldest unpaid month first, then materializes whatever
// remains as future paid months, and resolves the booking to completed. The
// caller holds the booking lock.
func (s *Service) reconcileImmediate(ctx context.Context, b *bookings.Booking, monthsToUse int) ([]shared.Effect, error) {
	now := s.now()

	pays, err := s.ledger.PaymentsForBooking(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}

	covered := 0
	for _, p := range payments.Unpaid(pays) {
		if covered >= monthsToUse {
			break
		}
		p.Status = payments.StatusPaid
		p.PaymentMethod = payments.MethodAdvanceDeposit
		p.PaidDate = &now
		p.ReceiptNumber = payments.AdvanceReceipt(p.ReceiptNumber)
		p.UpdatedAt = now
		if err := s.paymentRepo.Update(ctx, &p); err != nil {
			return nil, fmt.Errorf("cover payment %s: %w", p.PaymentMonth, err)
		}
		covered++
	}

	if remainder := monthsToUse - covered; remainder > 0 {
		pays, err = s.ledger.PaymentsForBooking(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("reload payments: %w", err)
		}
		var lastPaid *time.Time
		if latest := payments.LatestPaid(pays); latest != nil {
			lastPaid = &latest.DueDate
		}
		start := payments.NextDueDate(b.StartDate, lastPaid)
		drafts := payments.GenerateCoverageSchedule(start, b.StartDate.Day(), remainder, payments.PaidMonths(pays))
		for _, d := range drafts {
			if err := s.materializeDraft(ctx, b, d, now); err != nil {
				if errors.Is(err, shared.ErrDuplicateMonth) {
					s.logger.Warn("coverage month raced, counting shortfall",
						slog.String("booking_id", b.ID),
						slog.String("month", d.Month))
					continue
				}
				return nil, err
			}
			covered++
		}
		if covered < monthsToUse {
			s.logger.Warn("advance coverage shortfall",
				slog.String("booking_id", b.ID),
				slog.Int("months_to_use", monthsToUse),
				slog.Int("covered", covered))
		}
	}

	b.RemainingAdvanceMonths = 0
	b.Status = bookings.StatusCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	b.Termination = nil
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}

	text := fmt.Sprintf(
		"I have ended my stay, effective immediately. %d advance deposit month(s) totalling %s covered the outstanding and upcoming rent.",
		monthsToUse, notify.FormatPeso(float64(monthsToUse)*b.MonthlyRent))
	evt := events.BookingCompleted{
		BookingID:   b.ID,
		PropertyID:  b.PropertyID,
		TenantID:    b.TenantID,
		OwnerID:     b.OwnerID,
		Reason:      events.ReasonTenantEndedImmediate,
		MonthsUsed:  monthsToUse,
		CompletedAt: now,
	}
	return []shared.Effect{
		{Name: "availability", Run: func(ctx context.Context) error {
			return s.availability.RecomputeAvailability(ctx, b.PropertyID)
		}},
		{Name: "notify-owner", Run: func(ctx context.Context) error {
			return s.notifier.Notify(ctx, b.OwnerID, b.TenantID, b.PropertyID, text)
		}},
		{Name: "event", Run: func(ctx context.Context) error {
			return s.publisher.BookingCompleted(ctx, evt)
		}},
	}, nil
}

// materializeDraft writes one generated coverage month, updating an existing
// unpaid record in place rather than duplicating it.
func (s *Service) materializeDraft(ctx context.Context, b *bookings.Booking, d payments.Draft, now time.Time) error {
	existing, err := s.paymentRepo.GetByBookingMonth(ctx, b.ID, d.Month)
	if err != nil {
		return fmt.Errorf("look up month %s: %w", d.Month, err)
	}
	if existing != nil {
		if existing.Status == payments.StatusPaid {
			return fmt.Errorf("month %s: %w", d.Month, shared.ErrDuplicateMonth)
		}
		existing.Status = payments.StatusPaid
		existing.PaymentMethod = payments.MethodAdvanceDeposit
		existing.PaidDate = &now
		existing.ReceiptNumber = payments.AdvanceReceipt(existing.ReceiptNumber)
		existing.Notes = payments.AdvanceNote
		existing.UpdatedAt = now
		if err := s.paymentRepo.Update(ctx, existing); err != nil {
			return fmt.Errorf("cover month %s: %w", d.Month, err)
		}
		return nil
	}
	p := &payments.RentPayment{
		ID:            uuid.NewString(),
		BookingID:     b.ID,
		TenantID:      b.TenantID,
		OwnerID:       b.OwnerID,
		PropertyID:    b.PropertyID,
		Amount:        b.MonthlyRent,
		TotalAmount:   b.MonthlyRent,
		PaymentMonth:  d.Month,
		DueDate:       d.DueDate,
		PaidDate:      &now,
		Status:        payments.StatusPaid,
		PaymentMethod: payments.MethodAdvanceDeposit,
		ReceiptNumber: payments.AdvanceReceipt(""),
		Notes:         payments.AdvanceNote,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return fmt.Errorf("create month %s: %w", d.Month, err)
	}
	return nil
}
