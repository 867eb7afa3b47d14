package shared

import (
	"context"
	"log/slog"
)

// Effect is a best-effort side effect queued behind a committed state change
// (availability recompute, owner notification, event dispatch). Effects run
// after the primary mutation has been persisted; a failing effect is logged
// and never rolls the mutation back.
type Effect struct {
	Name string
	Run  func(context.Context) error
}

// RunEffects executes effects in order, logging failures and continuing.
func RunEffects(ctx context.Context, logger *slog.Logger, effects []Effect) {
	for _, e := range effects {
		if e.Run == nil {
			continue
		}
		if err := e.Run(ctx); err != nil && logger != nil {
			logger.Warn("side effect failed",
				slog.String("effect", e.Name),
				slog.Any("error", err))
		}
	}
}
