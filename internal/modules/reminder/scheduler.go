package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner is anything that performs one reminder pass.
type Runner interface {
	Run(ctx context.Context) Report
}

// Scheduler runs a Runner on a fixed interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	reports  chan<- Report
}

func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{runner: runner, interval: interval}
}

// Reports makes the scheduler publish every report on ch without blocking.
func (s *Scheduler) Reports(ch chan<- Report) *Scheduler {
	s.reports = ch
	return s
}

// Start runs once immediately, then on every tick, until ctx is done. The
// returned channel is closed when the loop has exited.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)
		for {
			select {
			case <-ticker.C:
				s.runOnce(ctx)
			case <-ctx.Done():
				log.Info().Msg("reminder scheduler stopped")
				return
			}
		}
	}()

	log.Info().Dur("interval", s.interval).Msg("reminder scheduler started")
	return done
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report := s.runner.Run(ctx)
	if s.reports != nil {
		select {
		case s.reports <- report:
		default:
		}
	}
}
