package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OTPRepository struct {
	pool *pgxpool.Pool
}

func NewOTPRepository(pool *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{pool: pool}
}

// Replace upserts on the email primary key, so concurrent issues for the same
// email leave exactly one live record.
func (r *OTPRepository) Replace(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO otp_codes (email, code_hash, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE
		 SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at, created_at = now()`,
		email, codeHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("replace otp: %w", err)
	}
	return nil
}

func (r *OTPRepository) Find(ctx context.Context, email string) (*domain.OTPCode, error) {
	var c domain.OTPCode
	err := r.pool.QueryRow(ctx,
		`SELECT email, code_hash, expires_at, created_at FROM otp_codes WHERE email = $1`,
		email,
	).Scan(&c.Email, &c.CodeHash, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}
	return &c, nil
}

// Claim consumes the record only if the hash still matches, so a verify
// racing a reissue cannot consume the newer code.
func (r *OTPRepository) Claim(ctx context.Context, email, codeHash string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM otp_codes WHERE email = $1 AND code_hash = $2`,
		email, codeHash,
	)
	if err != nil {
		return false, fmt.Errorf("claim otp: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM otp_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

func (r *OTPRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otp_codes WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired otps: %w", err)
	}
	return tag.RowsAffected(), nil
}
