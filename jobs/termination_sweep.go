package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/hanapbahay/hanapbahay/internal/observability"
	"github.com/hanapbahay/hanapbahay/internal/termination"
)

// TerminationSweepJob runs the countdown sweep.
type TerminationSweepJob struct {
	service *termination.Service
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewTerminationSweepJob constructs the job.
func NewTerminationSweepJob(service *termination.Service, metrics *observability.Metrics, logger *slog.Logger) *TerminationSweepJob {
	return &TerminationSweepJob{service: service, metrics: metrics, logger: logger}
}

// Handle processes TaskTerminationSweep tasks.
func (j *TerminationSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload TerminationSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	res, err := j.service.ProcessCountdowns(ctx)
	if err != nil {
		j.logger.Error("termination sweep run failed",
			slog.String("triggered_by", payload.TriggeredBy),
			slog.Any("error", err))
		return err
	}
	j.metrics.ObserveSweep(res.Processed, res.Removed, res.Errors)
	return nil
}
