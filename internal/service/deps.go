package service

import (
	"context"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/infrastructure/kafka"

	"github.com/google/uuid"
)

// SessionStore is the session cache used by the auth service. Implemented by
// the Redis session storage.
type SessionStore interface {
	Set(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, sessionID uuid.UUID) (*entity.Session, error)
	Exists(ctx context.Context, sessionID uuid.UUID) (bool, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
	UpdateLastActivity(ctx context.Context, sessionID uuid.UUID) error
}

// EventPublisher emits domain events. Implemented by the Kafka producer; a
// nil publisher disables event emission.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event *kafka.UserRegisteredEvent) error
	PublishReminderSent(ctx context.Context, event *kafka.ReminderSentEvent) error
}

// Mailer sends transactional email. A nil mailer disables it.
type Mailer interface {
	SendWelcomeEmail(email string) error
}
