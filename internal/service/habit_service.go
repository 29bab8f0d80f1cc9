package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/policy"
	"habit-tracker/internal/domain/repository"
	"habit-tracker/internal/domain/service"

	"github.com/google/uuid"
)

type habitService struct {
	habitRepo repository.HabitRepository
}

// NewHabitService creates a new habit service
func NewHabitService(habitRepo repository.HabitRepository) service.HabitService {
	return &habitService{
		habitRepo: habitRepo,
	}
}

func (s *habitService) Create(ctx context.Context, ownerID uuid.UUID, input *service.HabitCreate) (*entity.Habit, error) {
	if input.Place == "" {
		return nil, entity.NewValidationError("Place is required.")
	}
	if input.Action == "" {
		return nil, entity.NewValidationError("Action is required.")
	}
	if input.Time == "" {
		return nil, entity.NewValidationError("Time is required.")
	}

	now := time.Now().UTC()
	habit := &entity.Habit{
		ID:        uuid.New(),
		UserID:    ownerID,
		Place:     input.Place,
		Time:      input.Time,
		Action:    input.Action,
		Frequency: entity.DefaultFrequencyDays,
		Reward:    input.Reward,
		Duration:  input.Duration,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if input.IsPleasant != nil {
		habit.IsPleasant = *input.IsPleasant
	}
	if input.IsPublic != nil {
		habit.IsPublic = *input.IsPublic
	}
	if input.Frequency != nil {
		habit.Frequency = *input.Frequency
	}
	if input.LinkedHabitID != nil && *input.LinkedHabitID != uuid.Nil {
		habit.LinkedHabitID = input.LinkedHabitID
	}

	if err := habit.Validate(); err != nil {
		return nil, err
	}

	if habit.HasLinkedHabit() {
		if err := s.checkLinkedHabit(ctx, *habit.LinkedHabitID); err != nil {
			return nil, err
		}
	}

	habit.NextRemindAt = habit.FirstRemindAt(now)

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return habit, nil
}

func (s *habitService) Get(ctx context.Context, principal entity.Principal, habitID uuid.UUID) (*entity.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	if d := policy.Decide(principal, habit, policy.ActionRead); !d.Allowed {
		return nil, policy.Denied(d)
	}

	return habit, nil
}

func (s *habitService) ListOwned(ctx context.Context, ownerID uuid.UUID, filter *entity.HabitFilter) ([]*entity.Habit, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}
	return s.habitRepo.GetByUserID(ctx, ownerID, filter)
}

func (s *habitService) ListPublic(ctx context.Context, filter *entity.HabitFilter) ([]*entity.Habit, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}
	return s.habitRepo.GetPublic(ctx, filter)
}

func (s *habitService) Update(ctx context.Context, principal entity.Principal, habitID uuid.UUID, patch *entity.HabitPatch) (*entity.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	if d := policy.Decide(principal, habit, policy.ActionUpdate); !d.Allowed {
		return nil, policy.Denied(d)
	}

	// Merge the patch onto stored state. Absent fields keep their persisted
	// values so validation runs against what will actually be saved.
	rescheduleReminder := false

	if patch.Place != nil {
		habit.Place = *patch.Place
	}
	if patch.Time != nil {
		habit.Time = *patch.Time
		rescheduleReminder = true
	}
	if patch.Action != nil {
		habit.Action = *patch.Action
	}
	if patch.IsPleasant != nil {
		habit.IsPleasant = *patch.IsPleasant
	}
	if patch.Frequency != nil {
		habit.Frequency = *patch.Frequency
		rescheduleReminder = true
	}
	if patch.Duration != nil {
		habit.Duration = *patch.Duration
	}
	if patch.IsPublic != nil {
		habit.IsPublic = *patch.IsPublic
	}
	if patch.Reward != nil {
		if *patch.Reward == "" {
			habit.Reward = nil
		} else {
			habit.Reward = patch.Reward
		}
	}
	if patch.LinkedHabitID != nil {
		if *patch.LinkedHabitID == uuid.Nil {
			habit.LinkedHabitID = nil
		} else {
			habit.LinkedHabitID = patch.LinkedHabitID
		}
	}

	if err := habit.Validate(); err != nil {
		return nil, err
	}

	if patch.LinkedHabitID != nil && habit.HasLinkedHabit() {
		if err := s.checkLinkedHabit(ctx, *habit.LinkedHabitID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if rescheduleReminder {
		habit.NextRemindAt = habit.FirstRemindAt(now)
	}
	habit.UpdatedAt = now

	if err := s.habitRepo.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}

	return habit, nil
}

func (s *habitService) Delete(ctx context.Context, principal entity.Principal, habitID uuid.UUID) error {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}

	if d := policy.Decide(principal, habit, policy.ActionDelete); !d.Allowed {
		return policy.Denied(d)
	}

	return s.habitRepo.Delete(ctx, habitID)
}

// checkLinkedHabit verifies that a linked habit reference points at an
// existing row. A dangling id is invalid input, not a storage fault.
func (s *habitService) checkLinkedHabit(ctx context.Context, linkedID uuid.UUID) error {
	_, err := s.habitRepo.GetByID(ctx, linkedID)
	if err != nil {
		if errors.Is(err, entity.ErrHabitNotFound) {
			return entity.NewValidationError("Linked habit does not exist.")
		}
		return fmt.Errorf("failed to check linked habit: %w", err)
	}
	return nil
}
