package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"habit-tracker/internal/domain/repository"
	"habit-tracker/internal/domain/service"
	"habit-tracker/internal/infrastructure/kafka"
)

type reminderService struct {
	habitRepo repository.HabitRepository
	userRepo  repository.UserRepository
	gateway   service.MessageGateway
	events    EventPublisher
}

// NewReminderService creates a new reminder service. events may be nil.
func NewReminderService(
	habitRepo repository.HabitRepository,
	userRepo repository.UserRepository,
	gateway service.MessageGateway,
	events EventPublisher,
) service.ReminderService {
	return &reminderService{
		habitRepo: habitRepo,
		userRepo:  userRepo,
		gateway:   gateway,
		events:    events,
	}
}

// DispatchDue sends a reminder for every habit whose next reminder instant
// has passed. Dispatch is best-effort and independent per habit: a failure
// is logged and the batch moves on. A habit stops being due only when its
// send succeeds, so failed habits are retried on the next run.
func (s *reminderService) DispatchDue(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	habits, err := s.habitRepo.GetDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to get due habits: %w", err)
	}

	sent := 0
	for _, habit := range habits {
		profile, err := s.userRepo.GetProfile(ctx, habit.UserID)
		if err != nil {
			log.Printf("Failed to resolve profile for habit %s: %v", habit.ID, err)
			continue
		}

		// Owners without a registered chat simply receive nothing.
		if !profile.HasTelegramID() {
			continue
		}

		message := fmt.Sprintf("Reminder: %s at %s in %s.", habit.Action, habit.Time, habit.Place)

		if err := s.gateway.SendMessage(ctx, *profile.TelegramID, message); err != nil {
			log.Printf("Failed to send reminder for habit %s: %v", habit.ID, err)
			continue
		}

		sentAt := time.Now().UTC()
		nextRemindAt := habit.NextRemindAfter(sentAt)

		if err := s.habitRepo.UpdateReminderState(ctx, habit.ID, sentAt, nextRemindAt); err != nil {
			log.Printf("Failed to update reminder state for habit %s: %v", habit.ID, err)
			continue
		}

		if s.events != nil {
			event := &kafka.ReminderSentEvent{
				HabitID: habit.ID.String(),
				UserID:  habit.UserID.String(),
				ChatID:  *profile.TelegramID,
				SentAt:  sentAt,
			}
			if err := s.events.PublishReminderSent(ctx, event); err != nil {
				log.Printf("Failed to publish reminder sent event: %v", err)
			}
		}

		sent++
	}

	return sent, nil
}
