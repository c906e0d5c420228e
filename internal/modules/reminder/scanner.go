package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentals/internal/domain"
	"rentals/internal/pkg/guard"
	"rentals/internal/pkg/push"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	Title       = "Rental Reminder"
	MessageType = "rental_reminder"
	RentalsURL  = "/my-rentals"

	// sqlSlack widens the database query; the exact window is applied in Go.
	sqlSlack = 24 * time.Hour
)

// Store is the reservation persistence the scanner needs.
type Store interface {
	ReminderCandidates(ctx context.Context, from, to, sentBefore time.Time) ([]domain.Reservation, error)
	MarkReminderSent(ctx context.Context, id int64, at time.Time) error
	IncrementReminderAttempts(ctx context.Context, id int64) (int, error)
}

// TokenStore forgets device tokens the provider rejected.
type TokenStore interface {
	ClearDeviceToken(ctx context.Context, userID int64, token string) error
}

type Config struct {
	Lookahead     time.Duration
	RenotifyAfter time.Duration
	MaxAttempts   int
	Workers       int
}

func DefaultConfig() Config {
	return Config{
		Lookahead:     24 * time.Hour,
		RenotifyAfter: 12 * time.Hour,
		MaxAttempts:   3,
		Workers:       4,
	}
}

// Report summarizes one scanner run.
type Report struct {
	RunID         string    `json:"run_id"`
	Candidates    int       `json:"candidates"`
	Sent          int       `json:"sent"`
	Skipped       int       `json:"skipped"`
	Failed        int       `json:"failed"`
	LockHeld      bool      `json:"lock_held"`
	GuardDegraded bool      `json:"guard_degraded"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Scanner finds reservations starting soon and pushes one reminder to each
// renter.
type Scanner struct {
	store      Store
	tokens     TokenStore
	dispatcher push.Dispatcher
	guard      *guard.Guard
	cfg        Config
	now        func() time.Time
}

// NewScanner builds a scanner. g may be nil, in which case runs are not
// coordinated across processes.
func NewScanner(store Store, tokens TokenStore, dispatcher push.Dispatcher, g *guard.Guard, cfg Config) *Scanner {
	def := DefaultConfig()
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = def.Lookahead
	}
	if cfg.RenotifyAfter <= 0 {
		cfg.RenotifyAfter = def.RenotifyAfter
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	return &Scanner{
		store:      store,
		tokens:     tokens,
		dispatcher: dispatcher,
		guard:      g,
		cfg:        cfg,
		now:        time.Now,
	}
}

// WithClock replaces the time source.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// DueForReminder reports whether r should be reminded at now.
func DueForReminder(r domain.Reservation, now time.Time, cfg Config) bool {
	if r.Status == domain.ReservationCancelled {
		return false
	}
	if r.StartDate.Before(now) || r.StartDate.After(now.Add(cfg.Lookahead)) {
		return false
	}
	if !r.ReminderSent || r.ReminderSentAt == nil {
		return true
	}
	return r.ReminderSentAt.Before(now.Add(-cfg.RenotifyAfter))
}

// Run performs one scan. Per-reservation failures are counted, never returned.
func (s *Scanner) Run(ctx context.Context) Report {
	now := s.now().UTC()
	report := Report{RunID: uuid.NewString(), StartedAt: now}
	logger := log.With().Str("run_id", report.RunID).Logger()

	useGuard := s.guard != nil
	if useGuard {
		lock, err := s.guard.AcquireRunLock(ctx)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("reminder guard unavailable, running without it")
			report.GuardDegraded = true
			useGuard = false
		case lock == nil:
			logger.Info().Msg("another reminder run holds the lock")
			report.LockHeld = true
			report.FinishedAt = s.now().UTC()
			return report
		default:
			defer func() {
				if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
					logger.Warn().Err(err).Msg("release reminder lock")
				}
			}()
		}
	}

	list, err := s.store.ReminderCandidates(ctx,
		now.Add(-sqlSlack),
		now.Add(s.cfg.Lookahead+sqlSlack),
		now.Add(-s.cfg.RenotifyAfter+sqlSlack),
	)
	if err != nil {
		logger.Error().Err(err).Msg("load reminder candidates")
		report.FinishedAt = s.now().UTC()
		return report
	}

	due := make([]domain.Reservation, 0, len(list))
	for _, r := range list {
		if DueForReminder(r, now, s.cfg) {
			due = append(due, r)
		}
	}
	report.Candidates = len(due)

	var (
		mu       sync.Mutex
		degraded bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range due {
		r := due[i]
		g.Go(func() error {
			out, guardErr := s.process(gctx, logger, r, now, useGuard)

			mu.Lock()
			defer mu.Unlock()
			degraded = degraded || guardErr
			switch out {
			case outcomeSent:
				report.Sent++
			case outcomeSkipped:
				report.Skipped++
			case outcomeFailed:
				report.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()

	report.GuardDegraded = report.GuardDegraded || degraded
	report.FinishedAt = s.now().UTC()
	logger.Info().
		Int("candidates", report.Candidates).
		Int("sent", report.Sent).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Bool("guard_degraded", report.GuardDegraded).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("reminder run finished")
	return report
}

// process handles one reservation. The bool reports a guard store failure.
func (s *Scanner) process(ctx context.Context, logger zerolog.Logger, r domain.Reservation, now time.Time, useGuard bool) (outcome, bool) {
	l := logger.With().Int64("reservation_id", r.ID).Logger()

	token := r.User.Token()
	if token == "" {
		l.Debug().Msg("skip reminder: renter has no device token")
		return outcomeSkipped, false
	}
	if r.Listing == nil {
		l.Debug().Msg("skip reminder: listing no longer exists")
		return outcomeSkipped, false
	}

	guardFailed := false
	claimed := false
	if useGuard {
		ok, err := s.guard.ClaimReservation(ctx, r.ID, now)
		switch {
		case err != nil:
			l.Warn().Err(err).Msg("claim reminder marker")
			guardFailed = true
		case !ok:
			l.Debug().Msg("skip reminder: already claimed today")
			return outcomeSkipped, false
		default:
			claimed = true
		}
	}

	id, err := s.dispatcher.Send(ctx, buildMessage(r, token))
	if err == nil {
		if err := s.store.MarkReminderSent(ctx, r.ID, now); err != nil {
			l.Error().Err(err).Str("message_id", id).Msg("reminder sent but not recorded")
		}
		return outcomeSent, guardFailed
	}

	if errors.Is(err, push.ErrInvalidToken) {
		l.Warn().Err(err).Str("token", push.MaskToken(token)).Msg("device token rejected, giving up")
		if err := s.store.MarkReminderSent(ctx, r.ID, now); err != nil {
			l.Error().Err(err).Msg("mark reminder abandoned")
		}
		if err := s.tokens.ClearDeviceToken(ctx, r.UserID, token); err != nil {
			l.Error().Err(err).Msg("clear rejected device token")
		}
		return outcomeFailed, guardFailed
	}

	attempts, incErr := s.store.IncrementReminderAttempts(ctx, r.ID)
	if incErr != nil {
		l.Error().Err(incErr).Msg("count reminder attempt")
	}
	if incErr == nil && attempts >= s.cfg.MaxAttempts {
		l.Warn().Err(err).Int("attempts", attempts).Msg("reminder retries exhausted")
		if err := s.store.MarkReminderSent(ctx, r.ID, now); err != nil {
			l.Error().Err(err).Msg("mark reminder abandoned")
		}
		return outcomeFailed, guardFailed
	}

	l.Warn().Err(err).Int("attempts", attempts).Msg("reminder push failed, will retry")
	if claimed {
		if err := s.guard.ReleaseReservation(ctx, r.ID, now); err != nil {
			l.Warn().Err(err).Msg("release reminder marker")
			guardFailed = true
		}
	}
	return outcomeFailed, guardFailed
}

func buildMessage(r domain.Reservation, token string) push.Message {
	start := r.StartDate.Format("2006-01-02")
	return push.Message{
		Token: token,
		Title: Title,
		Body:  fmt.Sprintf("Your rental for %s is starting %s!", r.Listing.Name, start),
		Data: map[string]any{
			"rental_id":    r.ID,
			"listing_id":   r.ListingID,
			"listing_name": r.Listing.Name,
			"start_date":   start,
			"url":          RentalsURL,
			"type":         MessageType,
		},
	}
}
