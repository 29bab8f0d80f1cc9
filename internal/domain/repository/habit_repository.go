package repository

import (
	"context"
	"time"

	"habit-tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// HabitRepository defines habit storage operations
type HabitRepository interface {
	Create(ctx context.Context, habit *entity.Habit) error
	GetByID(ctx context.Context, habitID uuid.UUID) (*entity.Habit, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, filter *entity.HabitFilter) ([]*entity.Habit, error)
	GetPublic(ctx context.Context, filter *entity.HabitFilter) ([]*entity.Habit, error)
	Update(ctx context.Context, habit *entity.Habit) error

	// Delete removes the habit and clears any linked_habit references
	// pointing at it. References are cleared, never cascaded.
	Delete(ctx context.Context, habitID uuid.UUID) error

	// GetDue returns habits whose next reminder instant is at or before now.
	GetDue(ctx context.Context, now time.Time) ([]*entity.Habit, error)

	// UpdateReminderState stamps a successful send and the next due instant.
	UpdateReminderState(ctx context.Context, habitID uuid.UUID, lastRemindedAt time.Time, nextRemindAt time.Time) error
}
