// File: internal/infra/sched/sweep_worker.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"care-compass/internal/usecase"
)

// SweepWorker periodically evicts idle-expired chat sessions via the use case.
type SweepWorker struct {
	interval time.Duration
	chatUC   usecase.ChatUseCase
	log      *zerolog.Logger
}

func NewSweepWorker(interval time.Duration, chatUC usecase.ChatUseCase, logger *zerolog.Logger) *SweepWorker {
	l := logger.With().Str("component", "SweepWorker").Logger()
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SweepWorker{interval: interval, chatUC: chatUC, log: &l}
}

func (w *SweepWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting session sweep worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping session sweep worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.chatUC.SweepExpired(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("session sweep error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("expired sessions swept")
			}
		}
	}
}
