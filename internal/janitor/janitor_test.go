package janitor_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/chirphq/chirp/internal/janitor"
)

type fakeOTPRepo struct {
	deleteExpired func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (r *fakeOTPRepo) Replace(context.Context, string, string, time.Time) error { return nil }

func (r *fakeOTPRepo) Find(context.Context, string) (*domain.OTPCode, error) {
	return nil, domain.ErrOTPNotFound
}

func (r *fakeOTPRepo) Claim(context.Context, string, string) (bool, error) { return false, nil }

func (r *fakeOTPRepo) Delete(context.Context, string) error { return nil }

func (r *fakeOTPRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteExpired(ctx, cutoff)
}

type fakeVerificationRepo struct {
	deleteOlderThan func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (r *fakeVerificationRepo) Put(context.Context, string, string) error { return nil }

func (r *fakeVerificationRepo) Find(context.Context, string) (*domain.EmailVerification, error) {
	return nil, domain.ErrNotVerified
}

func (r *fakeVerificationRepo) Delete(context.Context, string) error { return nil }

func (r *fakeVerificationRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteOlderThan(ctx, cutoff)
}

func TestNew_InvalidCronExpr_Fails(t *testing.T) {
	_, err := janitor.New(&fakeOTPRepo{}, &fakeVerificationRepo{}, "not a cron expr", slog.Default())
	if err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}

func TestNew_AcceptsDescriptorSchedule(t *testing.T) {
	_, err := janitor.New(&fakeOTPRepo{}, &fakeVerificationRepo{}, "@every 1m", slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSweep_PurgesBothTables(t *testing.T) {
	var otpCutoff, verificationCutoff time.Time

	otps := &fakeOTPRepo{
		deleteExpired: func(_ context.Context, cutoff time.Time) (int64, error) {
			otpCutoff = cutoff
			return 3, nil
		},
	}
	verifications := &fakeVerificationRepo{
		deleteOlderThan: func(_ context.Context, cutoff time.Time) (int64, error) {
			verificationCutoff = cutoff
			return 2, nil
		},
	}

	j, err := janitor.New(otps, verifications, "@every 1m", slog.Default())
	if err != nil {
		t.Fatalf("new janitor: %v", err)
	}

	before := time.Now()
	j.Sweep(context.Background())

	if otpCutoff.Before(before) {
		t.Errorf("otp cutoff %v is before sweep time %v", otpCutoff, before)
	}

	// Verification mirrors older than the window are purged; the cutoff sits
	// about ten minutes in the past.
	age := before.Sub(verificationCutoff)
	if age < 9*time.Minute || age > 11*time.Minute {
		t.Errorf("verification cutoff age = %v, want ~10m", age)
	}
}
