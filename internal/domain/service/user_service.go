package service

import (
	"context"
	"time"

	"habit-tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// UserService manages accounts and their profile extension.
type UserService interface {
	// Register creates the user row and its profile row in one transaction.
	Register(ctx context.Context, input *entity.UserCreate) (*entity.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ValidatePassword(ctx context.Context, user *entity.User, password string) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	RegisterTelegramID(ctx context.Context, userID uuid.UUID, telegramID string) (*entity.Profile, error)

	// DeleteAccount removes the user; owned habits are cascaded away.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// TokenPair is an access/refresh token couple issued for a session.
type TokenPair struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}

// AuthService issues and validates bearer credentials.
type AuthService interface {
	Register(ctx context.Context, input *entity.UserCreate) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, *TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID, sessionID uuid.UUID) error

	// ValidateAccessToken returns the principal and session behind a token.
	ValidateAccessToken(ctx context.Context, accessToken string) (entity.Principal, uuid.UUID, error)
}
