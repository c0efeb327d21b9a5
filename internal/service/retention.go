package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"kofiapi/internal/domain"
	"kofiapi/internal/infra"
)

// SweepReport summarizes one retention cycle.
type SweepReport struct {
	Skipped bool
	Users   int
	Removed int64
	Errors  int
}

// Sweeper deletes transactions older than each user's retention window.
// Users themselves are never removed by the sweep: they are durable anchors,
// only their transactions expire.
type Sweeper struct {
	users  domain.UserRepository
	txns   domain.TransactionRepository
	cfg    *infra.Config
	guard  *Maintenance
	logger zerolog.Logger
	now    func() time.Time
}

// NewSweeper creates a retention sweeper.
func NewSweeper(users domain.UserRepository, txns domain.TransactionRepository, cfg *infra.Config, guard *Maintenance, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		users:  users,
		txns:   txns,
		cfg:    cfg,
		guard:  guard,
		logger: logger,
		now:    time.Now,
	}
}

// Run sweeps once immediately, then once per configured interval until the
// context is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one retention cycle. A failure for one user is logged and does
// not abort the cycle for the others; the sweep itself never returns an
// error. When a backup operation holds the maintenance guard the cycle is
// skipped and retried on the next tick.
func (s *Sweeper) Sweep(ctx context.Context) SweepReport {
	if !s.guard.TryLock() {
		s.logger.Warn().Msg("retention sweep skipped, maintenance in progress")
		return SweepReport{Skipped: true}
	}
	defer s.guard.Unlock()

	var report SweepReport

	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("retention sweep could not list users")
		report.Errors++
		return report
	}

	now := s.now()
	for _, user := range users {
		days := user.ResolveRetention(s.cfg.RetentionDays)
		cutoff := now.AddDate(0, 0, -days)

		removed, err := s.txns.DeleteOlderThan(ctx, user.VerificationToken, cutoff)
		if err != nil {
			s.logger.Error().Err(err).
				Str("verification_token", user.VerificationToken).
				Msg("retention sweep failed for user")
			report.Errors++
			continue
		}
		report.Users++
		report.Removed += removed
	}

	s.logger.Info().
		Int("users", report.Users).
		Int64("removed", report.Removed).
		Int("errors", report.Errors).
		Msg("retention sweep finished")
	return report
}
