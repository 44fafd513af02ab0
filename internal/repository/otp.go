package repository

import (
	"context"
	"time"

	"github.com/chirphq/chirp/internal/domain"
)

type OTPRepository interface {
	// Replace stores the code hash for email, superseding any existing
	// record. Exactly one live record per email survives concurrent calls
	// (last write wins).
	Replace(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	Find(ctx context.Context, email string) (*domain.OTPCode, error)
	// Claim deletes the record matching both email and codeHash, reporting
	// whether a row was consumed. Losing a race with a concurrent Replace
	// yields false, never a partial state.
	Claim(ctx context.Context, email, codeHash string) (bool, error)
	Delete(ctx context.Context, email string) error
	// DeleteExpired removes records whose expiry is before cutoff and
	// returns the number removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
