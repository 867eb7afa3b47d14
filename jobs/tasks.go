// Package jobs hosts the background work of the marketplace: the termination
// countdown sweep and the rent-due scan, both scheduled through Asynq.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTerminationSweep resolves expired termination countdowns.
	TaskTerminationSweep = "termination:sweep"
	// TaskRentDueScan covers due rent months from advance deposits.
	TaskRentDueScan = "rent:due_scan"
)

// TerminationSweepPayload parameterizes a sweep run.
type TerminationSweepPayload struct {
	// TriggeredBy records what initiated the run (cron, api, cli).
	TriggeredBy string `json:"triggered_by"`
}

// NewTerminationSweepTask constructs a sweep task.
func NewTerminationSweepTask(triggeredBy string) (*asynq.Task, error) {
	data, err := json.Marshal(TerminationSweepPayload{TriggeredBy: triggeredBy})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTerminationSweep, data,
		asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}

// RentDueScanPayload parameterizes a rent-due scan run.
type RentDueScanPayload struct {
	TriggeredBy string `json:"triggered_by"`
}

// NewRentDueScanTask constructs a rent-due scan task.
func NewRentDueScanTask(triggeredBy string) (*asynq.Task, error) {
	data, err := json.Marshal(RentDueScanPayload{TriggeredBy: triggeredBy})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRentDueScan, data,
		asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Timeout(10*time.Minute)), nil
}
