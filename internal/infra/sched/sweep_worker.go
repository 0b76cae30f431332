package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"agro-advisory/internal/domain/ports/repository"
	"agro-advisory/internal/infra/metrics"
)

// SweepWorker periodically recounts the active/expired subscription split
// and publishes it as gauges. Access itself is always derived at read
// time, so the sweep only feeds observability; it never mutates rows.
type SweepWorker struct {
	interval time.Duration
	farmers  repository.FarmerRepository
	log      *zerolog.Logger
}

func NewSweepWorker(interval time.Duration, farmers repository.FarmerRepository, logger *zerolog.Logger) *SweepWorker {
	compLog := logger.With().Str("component", "SweepWorker").Logger()
	return &SweepWorker{
		interval: interval,
		farmers:  farmers,
		log:      &compLog,
	}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting subscription sweep worker")
	// Run once on startup, then on every tick
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping subscription sweep worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	active, expired, err := w.farmers.CountByAccess(ctx, repository.NoTX, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("subscription sweep failed")
		return
	}
	metrics.SetSubscriptionCounts(active, expired)
	w.log.Debug().Int("active", active).Int("expired", expired).Msg("subscription sweep done")
}
