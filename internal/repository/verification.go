package repository

import (
	"context"
	"time"

	"github.com/chirphq/chirp/internal/domain"
)

// VerificationRepository holds the server-side mirror of issued verification
// tokens. The signed token is the source of truth for the email claim; the
// mirror exists to reject replayed or superseded tokens.
type VerificationRepository interface {
	Put(ctx context.Context, email, token string) error
	Find(ctx context.Context, email string) (*domain.EmailVerification, error)
	Delete(ctx context.Context, email string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
