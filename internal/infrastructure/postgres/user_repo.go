package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// userColumns aggregates follower/following IDs from the follows table so the
// public projection can be built from a single row.
const userColumns = `
	u.id, u.username, u.full_name, u.email, u.password_hash, u.session_epoch,
	u.profile_img, u.cover_img, u.bio, u.link, u.created_at, u.updated_at,
	COALESCE((SELECT array_agg(f.follower_id::text) FROM follows f WHERE f.followee_id = u.id), '{}'),
	COALESCE((SELECT array_agg(f.followee_id::text) FROM follows f WHERE f.follower_id = u.id), '{}')`

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, full_name, email, password_hash, session_epoch, profile_img, cover_img, bio, link)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		user.ID, user.Username, user.FullName, user.Email, user.PasswordHash,
		user.SessionEpoch, user.ProfileImg, user.CoverImg, user.Bio, user.Link,
	)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return nil, domain.ErrEmailTaken
			default:
				return nil, domain.ErrUsernameTaken
			}
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) BumpSessionEpoch(ctx context.Context, userID string) (int64, error) {
	var epoch int64
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET session_epoch = session_epoch + 1, updated_at = now()
		 WHERE id = $1 RETURNING session_epoch`,
		userID,
	).Scan(&epoch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrUserNotFound
		}
		return 0, fmt.Errorf("bump session epoch: %w", err)
	}
	return epoch, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.FullName, &u.Email, &u.PasswordHash, &u.SessionEpoch,
		&u.ProfileImg, &u.CoverImg, &u.Bio, &u.Link, &u.CreatedAt, &u.UpdatedAt,
		&u.Followers, &u.Following,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
