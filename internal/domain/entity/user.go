package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account. Email doubles as the login identifier.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	IsModerator  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the one-to-one extension of a user holding delivery details for
// the messaging gateway. It is created in the same transaction as the user
// and never exists on its own.
type Profile struct {
	UserID     uuid.UUID
	TelegramID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasTelegramID reports whether the profile can receive reminders.
func (p *Profile) HasTelegramID() bool {
	return p.TelegramID != nil && *p.TelegramID != ""
}

// UserCreate carries registration input.
type UserCreate struct {
	Email    string
	Password string
}

// Session represents an authenticated session backing a token pair.
type Session struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Principal is the actor behind a request. The zero value is anonymous.
type Principal struct {
	UserID      uuid.UUID
	IsModerator bool
}

// Anonymous reports whether the principal is unauthenticated.
func (p Principal) Anonymous() bool {
	return p.UserID == uuid.Nil
}
