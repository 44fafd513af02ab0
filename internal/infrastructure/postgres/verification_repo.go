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

type VerificationRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationRepository(pool *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

func (r *VerificationRepository) Put(ctx context.Context, email, token string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO email_verifications (email, token)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET token = EXCLUDED.token, created_at = now()`,
		email, token,
	)
	if err != nil {
		return fmt.Errorf("put verification: %w", err)
	}
	return nil
}

func (r *VerificationRepository) Find(ctx context.Context, email string) (*domain.EmailVerification, error) {
	var v domain.EmailVerification
	err := r.pool.QueryRow(ctx,
		`SELECT email, token, created_at FROM email_verifications WHERE email = $1`,
		email,
	).Scan(&v.Email, &v.Token, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotVerified
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	return &v, nil
}

func (r *VerificationRepository) Delete(ctx context.Context, email string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM email_verifications WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete verification: %w", err)
	}
	return nil
}

func (r *VerificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_verifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale verifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
