package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/service"
	"habit-tracker/internal/infrastructure/kafka"
	pkgjwt "habit-tracker/pkg/jwt"

	"github.com/google/uuid"
)

type authService struct {
	userService    service.UserService
	sessionStorage SessionStore
	tokenManager   *pkgjwt.TokenManager
	events         EventPublisher
	mailer         Mailer
	sessionTTL     time.Duration
}

// NewAuthService creates a new auth service. events and mailer may be nil.
func NewAuthService(
	userService service.UserService,
	sessionStorage SessionStore,
	tokenManager *pkgjwt.TokenManager,
	sessionTTL time.Duration,
	events EventPublisher,
	mailer Mailer,
) service.AuthService {
	return &authService{
		userService:    userService,
		sessionStorage: sessionStorage,
		tokenManager:   tokenManager,
		events:         events,
		mailer:         mailer,
		sessionTTL:     sessionTTL,
	}
}

// Register creates the account, then notifies best-effort collaborators.
// Event and mail failures are logged, never surfaced to the caller.
func (s *authService) Register(ctx context.Context, input *entity.UserCreate) (*entity.User, error) {
	user, err := s.userService.Register(ctx, input)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		event := &kafka.UserRegisteredEvent{
			UserID:    user.ID.String(),
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		}
		if err := s.events.PublishUserRegistered(ctx, event); err != nil {
			log.Printf("Failed to publish user registered event: %v", err)
		}
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(user.Email); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}

	return user, nil
}

// Login authenticates the user and opens a session
func (s *authService) Login(ctx context.Context, email, password string) (*entity.User, *service.TokenPair, error) {
	user, err := s.userService.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, nil, entity.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive {
		return nil, nil, entity.ErrInvalidCredentials
	}

	if err := s.userService.ValidatePassword(ctx, user, password); err != nil {
		return nil, nil, entity.ErrInvalidCredentials
	}

	tokenPair, err := s.createSession(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return user, tokenPair, nil
}

func (s *authService) createSession(ctx context.Context, user *entity.User) (*service.TokenPair, error) {
	now := time.Now().UTC()
	session := &entity.Session{
		ID:             uuid.New(),
		UserID:         user.ID,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.sessionTTL),
	}

	if err := s.sessionStorage.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return s.issueTokens(user.ID, session.ID, user.IsModerator)
}

func (s *authService) issueTokens(userID, sessionID uuid.UUID, isModerator bool) (*service.TokenPair, error) {
	accessToken, accessExpiresAt, err := s.tokenManager.GenerateAccessToken(userID, sessionID, isModerator)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.tokenManager.GenerateRefreshToken(userID, sessionID, isModerator)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &service.TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, nil
}

// RefreshToken generates a new token pair using a refresh token
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	claims, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	session, err := s.sessionStorage.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, entity.ErrSessionNotFound
	}

	if err := s.sessionStorage.UpdateLastActivity(ctx, session.ID); err != nil {
		log.Printf("Failed to update session activity: %v", err)
	}

	return s.issueTokens(session.UserID, session.ID, claims.IsModerator)
}

// Logout invalidates the session behind the presented credentials
func (s *authService) Logout(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := s.sessionStorage.Get(ctx, sessionID)
	if err != nil {
		return entity.ErrSessionNotFound
	}

	if session.UserID != userID {
		return entity.ErrSessionNotFound
	}

	if err := s.sessionStorage.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// ValidateAccessToken validates the token and checks the session is live
func (s *authService) ValidateAccessToken(ctx context.Context, accessToken string) (entity.Principal, uuid.UUID, error) {
	claims, err := s.tokenManager.ValidateAccessToken(accessToken)
	if err != nil {
		return entity.Principal{}, uuid.Nil, entity.ErrInvalidCredentials
	}

	exists, err := s.sessionStorage.Exists(ctx, claims.SessionID)
	if err != nil {
		return entity.Principal{}, uuid.Nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return entity.Principal{}, uuid.Nil, entity.ErrSessionNotFound
	}

	if err := s.sessionStorage.UpdateLastActivity(ctx, claims.SessionID); err != nil {
		log.Printf("Failed to update session activity: %v", err)
	}

	principal := entity.Principal{
		UserID:      claims.UserID,
		IsModerator: claims.IsModerator,
	}

	return principal, claims.SessionID, nil
}
