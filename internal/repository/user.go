package repository

import (
	"context"

	"github.com/chirphq/chirp/internal/domain"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create fails with domain.ErrUsernameTaken or domain.ErrEmailTaken when
	// the respective unique constraint is violated.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	// BumpSessionEpoch atomically increments the user's session epoch and
	// returns the new value, invalidating every previously issued session.
	BumpSessionEpoch(ctx context.Context, userID string) (int64, error)
}
