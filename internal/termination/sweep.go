package termination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hanapbahay/hanapbahay/internal/bookings"
	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// SweepResult aggregates one countdown sweep run.
type SweepResult struct {
	Processed int `json:"processed"`
	Removed   int `json:"removed"`
	Errors    int `json:"errors"`
}

// ProcessCountdowns resolves every booking whose termination countdown has
// reached its end date. Bookings still counting down are left untouched, so
// the sweep is safe to re-run at any cadence. A failure on one booking is
// counted and logged; the sweep continues with the rest.
func (s *Service) ProcessCountdowns(ctx context.Context) (*SweepResult, error) {
	pending, err := s.bookingRepo.ListCountdownPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countdown bookings: %w", err)
	}

	res := &SweepResult{}
	for i := range pending {
		id := pending[i].ID
		res.Processed++
		removed, err := s.resolveCountdown(ctx, id)
		if err != nil {
			res.Errors++
			s.logger.Error("countdown resolution failed",
				slog.String("booking_id", id),
				slog.Any("error", err))
			continue
		}
		if removed {
			res.Removed++
		}
	}
	s.logger.Info("termination sweep finished",
		slog.Int("processed", res.Processed),
		slog.Int("removed", res.Removed),
		slog.Int("errors", res.Errors))
	return res, nil
}

// resolveCountdown re-reads the booking under its lock and finalizes it when
// the end date has passed. The re-read matters: an immediate leave may have
// resolved the booking between the sweep's list and this item.
func (s *Service) resolveCountdown(ctx context.Context, bookingID string) (bool, error) {
	var (
		removed bool
		effects []shared.Effect
	)
	unlock := s.locks.Lock(bookingID)
	err := s.tx.Serializable(ctx, func(ctx context.Context) error {
		var err error
		removed, effects, err = s.resolveLocked(ctx, bookingID)
		return err
	})
	unlock()
	if err != nil {
		return false, err
	}
	shared.RunEffects(ctx, s.logger, effects)
	return removed, nil
}

func (s *Service) resolveLocked(ctx context.Context, bookingID string) (bool, []shared.Effect, error) {
	b, err := s.bookingRepo.Get(ctx, bookingID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	if !b.CountdownActive() || !b.ActivePaid() {
		return false, nil, nil
	}
	now := s.now()
	if now.Before(b.Termination.EndDate) {
		return false, nil, nil
	}

	if b.RemainingAdvanceMonths > 0 {
		effects, err := s.reconcileImmediate(ctx, b, b.RemainingAdvanceMonths)
		if err != nil {
			return false, nil, err
		}
		return true, effects, nil
	}

	// Nothing left to spend: complete without reconciliation.
	b.Status = bookings.StatusCompleted
	b.CompletedAt = &now
	b.UpdatedAt = now
	b.Termination = nil
	if err := s.bookingRepo.Update(ctx, b); err != nil {
		return false, nil, fmt.Errorf("complete booking: %w", err)
	}
	effects := []shared.Effect{
		{Name: "availability", Run: func(ctx context.Context) error {
			return s.availability.RecomputeAvailability(ctx, b.PropertyID)
		}},
	}
	return true, effects, nil
}

// CountdownInfo is the read-only countdown projection.
type CountdownInfo struct {
	Active          bool       `json:"active"`
	DaysRemaining   int        `json:"days_remaining,omitempty"`
	RemainingMonths int        `json:"remaining_months,omitempty"`
	InitiatedAt     *time.Time `json:"initiated_at,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
}

// CountdownInfo reports whether a countdown is running and how long remains.
func (s *Service) CountdownInfo(ctx context.Context, bookingID string) (*CountdownInfo, error) {
	b, err := s.bookingRepo.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.CountdownActive() {
		return &CountdownInfo{Active: false}, nil
	}
	t := b.Termination
	return &CountdownInfo{
		Active:          true,
		DaysRemaining:   shared.DaysUntil(s.now(), t.EndDate),
		RemainingMonths: b.RemainingAdvanceMonths,
		InitiatedAt:     &t.InitiatedAt,
		EndDate:         &t.EndDate,
	}, nil
}
