package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chirphq/chirp/internal/metrics"
	"github.com/chirphq/chirp/internal/repository"
	"github.com/chirphq/chirp/internal/usecase"
	"github.com/robfig/cron/v3"
)

// Janitor periodically removes expired OTP records and stale verification
// mirrors. Both are already unusable by then — the sweep keeps the tables
// from accumulating dead rows, it is not part of the correctness story.
type Janitor struct {
	otps          repository.OTPRepository
	verifications repository.VerificationRepository
	schedule      cron.Schedule
	logger        *slog.Logger
}

// New parses the sweep schedule (standard cron syntax or a descriptor like
// "@every 1m") and returns the janitor.
func New(otps repository.OTPRepository, verifications repository.VerificationRepository, cronExpr string, logger *slog.Logger) (*Janitor, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", cronExpr, err)
	}
	return &Janitor{
		otps:          otps,
		verifications: verifications,
		schedule:      schedule,
		logger:        logger.With("component", "janitor"),
	}, nil
}

func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started")

	for {
		next := j.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("janitor shut down")
			return
		case <-timer.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one purge cycle.
func (j *Janitor) Sweep(ctx context.Context) {
	start := time.Now()

	otps, err := j.otps.DeleteExpired(ctx, time.Now())
	if err != nil {
		j.logger.ErrorContext(ctx, "purge expired otps", "error", err)
	} else if otps > 0 {
		j.logger.InfoContext(ctx, "purged expired otps", "count", otps)
		metrics.JanitorPurgedTotal.WithLabelValues("otp_codes").Add(float64(otps))
	}

	cutoff := time.Now().Add(-usecase.VerificationTTL)
	verifications, err := j.verifications.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.ErrorContext(ctx, "purge stale verifications", "error", err)
	} else if verifications > 0 {
		j.logger.InfoContext(ctx, "purged stale verifications", "count", verifications)
		metrics.JanitorPurgedTotal.WithLabelValues("email_verifications").Add(float64(verifications))
	}

	metrics.JanitorSweepDuration.Observe(time.Since(start).Seconds())
}
