package repository

import (
	"context"

	"habit-tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository defines user and profile storage operations
type UserRepository interface {
	// CreateWithProfile inserts the user row and its profile row in a single
	// transaction. The profile never exists independently of the user.
	CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error

	GetByID(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, profile *entity.Profile) error

	// Delete removes the user; owned habits and the profile go with it.
	Delete(ctx context.Context, userID uuid.UUID) error
}
