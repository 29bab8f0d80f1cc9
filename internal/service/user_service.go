package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/repository"
	"habit-tracker/internal/domain/service"
	"habit-tracker/pkg/hash"
	"habit-tracker/pkg/validation"

	"github.com/google/uuid"
)

type userService struct {
	userRepo repository.UserRepository
	hasher   *hash.Hasher
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, hasher *hash.Hasher) service.UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Register creates the user and its profile extension in one transaction.
// The profile is an explicit registration step rather than a hook reacting
// to the user insert.
func (s *userService) Register(ctx context.Context, input *entity.UserCreate) (*entity.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if err := validation.ValidateEmail(email); err != nil {
		return nil, entity.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, entity.NewValidationError(err.Error())
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, entity.ErrEmailTaken
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &entity.Profile{
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

func (s *userService) ValidatePassword(ctx context.Context, user *entity.User, password string) error {
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return entity.ErrInvalidCredentials
	}
	return nil
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	return s.userRepo.GetProfile(ctx, userID)
}

func (s *userService) RegisterTelegramID(ctx context.Context, userID uuid.UUID, telegramID string) (*entity.Profile, error) {
	telegramID = strings.TrimSpace(telegramID)
	if err := validation.ValidateTelegramID(telegramID); err != nil {
		return nil, entity.NewValidationError(err.Error())
	}

	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.TelegramID = &telegramID
	profile.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.Delete(ctx, userID)
}
