package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hanapbahay/hanapbahay/internal/deposit"
	"github.com/hanapbahay/hanapbahay/internal/observability"
	"github.com/hanapbahay/hanapbahay/internal/payments"
	"github.com/hanapbahay/hanapbahay/internal/termination"
	"github.com/hanapbahay/hanapbahay/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Metrics            *observability.Metrics
	DepositHandler     *deposit.Handler
	TerminationHandler *termination.Handler
	PaymentsHandler    *payments.Handler
	JobsHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with HanapBahay defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		params.DepositHandler.MountRoutes(r)
		params.TerminationHandler.MountRoutes(r)
		params.PaymentsHandler.MountRoutes(r)
		if params.JobsHandler != nil {
			params.JobsHandler.MountRoutes(r)
		}
	})

	return r
}
