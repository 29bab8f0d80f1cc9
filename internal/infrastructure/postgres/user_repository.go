package postgres

import (
	"context"
	"fmt"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

// CreateWithProfile inserts the user and its profile row atomically. The
// profile is an explicit registration step, not a reactive hook.
func (r *userRepository) CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, is_moderator, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Email, user.PasswordHash, user.IsModerator, user.IsActive, user.CreatedAt, user.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO profiles (user_id, telegram_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, profile.UserID, profile.TelegramID, profile.CreatedAt, profile.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit registration: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return r.getUser(ctx, `WHERE id = $1`, userID)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getUser(ctx, `WHERE email = $1`, email)
}

func (r *userRepository) getUser(ctx context.Context, where string, arg any) (*entity.User, error) {
	query := `
		SELECT id, email, password_hash, is_moderator, is_active, created_at, updated_at
		FROM users ` + where

	user := &entity.User{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.IsModerator, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

func (r *userRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	query := `
		SELECT user_id, telegram_id, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	profile := &entity.Profile{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID, &profile.TelegramID, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, entity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, profile *entity.Profile) error {
	query := `
		UPDATE profiles SET
			telegram_id = $1,
			updated_at = $2
		WHERE user_id = $3
	`

	result, err := r.pool.Exec(ctx, query, profile.TelegramID, profile.UpdatedAt, profile.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrProfileNotFound
	}

	return nil
}

// Delete removes the user row. Habits and the profile are removed by the
// ON DELETE CASCADE foreign keys.
func (r *userRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}

	return nil
}
