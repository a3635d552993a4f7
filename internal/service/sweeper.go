package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"stockroom/internal/metrics"
)

// Sweeper periodically releases reservations that timed out before the
// caller confirmed or released them. It drives each one through the same
// coordinator path interactive calls use; there is no separate code path
// for expiry.
type Sweeper struct {
	Coordinator *Coordinator
	Interval    time.Duration
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Info().Dur("interval", s.Interval).Msg("expiration sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("expiration sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns how many reservations were expired.
// Per-reservation failures are logged and skipped; whatever is missed is
// picked up on the next period, so the sweep is at-least-once and safe
// to interrupt anywhere.
func (s *Sweeper) Sweep(ctx context.Context) int {
	start := time.Now()

	expired, err := s.Coordinator.reservations.FindExpiredActive(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("expired reservation query failed")
		return 0
	}

	swept := 0
	for i := range expired {
		if err := s.Coordinator.expireReservation(ctx, expired[i].ID); err != nil {
			log.Error().Err(err).Str("reservation_id", expired[i].ID).Msg("failed to expire reservation")
			continue
		}
		swept++
	}

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	if len(expired) > 0 {
		log.Info().Int("found", len(expired)).Int("swept", swept).Msg("expiration sweep finished")
	}
	return swept
}
