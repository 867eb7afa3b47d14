package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/hanapbahay/hanapbahay/internal/bookings"
	"github.com/hanapbahay/hanapbahay/internal/deposit"
	"github.com/hanapbahay/hanapbahay/internal/observability"
	"github.com/hanapbahay/hanapbahay/internal/payments"
	"github.com/hanapbahay/hanapbahay/internal/shared"
)

// RentDueScanJob walks active bookings holding advance months and covers any
// month that has come due. One bad booking never stops the scan.
type RentDueScanJob struct {
	bookingRepo bookings.RepositoryPort
	ledger      *payments.Ledger
	service     *deposit.Service
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewRentDueScanJob constructs the job.
func NewRentDueScanJob(bookingRepo bookings.RepositoryPort, ledger *payments.Ledger,
	service *deposit.Service, metrics *observability.Metrics, logger *slog.Logger) *RentDueScanJob {
	return &RentDueScanJob{
		bookingRepo: bookingRepo,
		ledger:      ledger,
		service:     service,
		metrics:     metrics,
		logger:      logger,
	}
}

// Handle processes TaskRentDueScan tasks.
func (j *RentDueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RentDueScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return j.Run(ctx)
}

// Run executes one scan.
func (j *RentDueScanJob) Run(ctx context.Context) error {
	active, err := j.bookingRepo.ListActiveWithAdvance(ctx)
	if err != nil {
		return err
	}
	covered, errs := 0, 0
	now := time.Now()
	for i := range active {
		b := &active[i]
		pays, err := j.ledger.PaymentsForBooking(ctx, b.ID)
		if err != nil {
			errs++
			j.logger.Error("load payments", slog.String("booking_id", b.ID), slog.Any("error", err))
			continue
		}
		var lastPaid *time.Time
		if latest := payments.LatestPaid(pays); latest != nil {
			lastPaid = &latest.DueDate
		}
		nextDue := payments.NextDueDate(b.StartDate, lastPaid)
		if nextDue.After(now) {
			continue
		}
		res, err := j.service.CoverMonthForPayment(ctx, b.ID, shared.MonthKey(nextDue))
		if err != nil {
			errs++
			j.logger.Error("cover due month", slog.String("booking_id", b.ID), slog.Any("error", err))
			continue
		}
		if res.UsedAdvanceMonth {
			covered++
			j.metrics.ObserveAdvanceMonths(1)
		}
	}
	j.logger.Info("rent due scan finished",
		slog.Int("bookings", len(active)),
		slog.Int("covered", covered),
		slog.Int("errors", errs))
	return nil
}
