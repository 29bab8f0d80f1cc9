package service

import (
	"context"

	"habit-tracker/internal/domain/entity"

	"github.com/google/uuid"
)

// HabitCreate carries create input. Nil optionals take their defaults:
// frequency 1, is_pleasant false, is_public false.
type HabitCreate struct {
	Place         string
	Time          string
	Action        string
	IsPleasant    *bool
	LinkedHabitID *uuid.UUID
	Frequency     *int32
	Reward        *string
	Duration      int32
	IsPublic      *bool
}

// HabitService orchestrates habit CRUD: validator first, then policy, then
// storage.
type HabitService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input *HabitCreate) (*entity.Habit, error)
	Get(ctx context.Context, principal entity.Principal, habitID uuid.UUID) (*entity.Habit, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID, filter *entity.HabitFilter) ([]*entity.Habit, error)
	ListPublic(ctx context.Context, filter *entity.HabitFilter) ([]*entity.Habit, error)
	Update(ctx context.Context, principal entity.Principal, habitID uuid.UUID, patch *entity.HabitPatch) (*entity.Habit, error)
	Delete(ctx context.Context, principal entity.Principal, habitID uuid.UUID) error
}
