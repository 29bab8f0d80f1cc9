package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MaxDurationSeconds bounds how long a single habit execution may take.
	MaxDurationSeconds = 120

	MinFrequencyDays = 1
	MaxFrequencyDays = 7

	// DefaultFrequencyDays is applied when a create request omits frequency.
	DefaultFrequencyDays = 1
)

// TimeOfDayLayout is the wire and storage format for Habit.Time.
const TimeOfDayLayout = "15:04:05"

// Habit represents a user's habit
type Habit struct {
	ID     uuid.UUID
	UserID uuid.UUID

	// What, where and when
	Place  string
	Time   string // "HH:MM:SS"
	Action string

	// Behavior details
	IsPleasant    bool
	LinkedHabitID *uuid.UUID // weak reference, cleared when the target is deleted
	Frequency     int32      // days between repeats, 1..7
	Reward        *string
	Duration      int32 // seconds
	IsPublic      bool

	// Reminder schedule state
	LastRemindedAt *time.Time
	NextRemindAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasReward reports whether a non-empty reward is set. An empty string
// counts as unset, matching the falsy semantics of the public API.
func (h *Habit) HasReward() bool {
	return h.Reward != nil && *h.Reward != ""
}

// HasLinkedHabit reports whether a linked habit reference is set.
func (h *Habit) HasLinkedHabit() bool {
	return h.LinkedHabitID != nil && *h.LinkedHabitID != uuid.Nil
}

// Validate checks the habit invariants. It runs against the full candidate
// state on create and against the merged state on update. Violations are
// returned as *ValidationError carrying the violated rule.
func (h *Habit) Validate() error {
	if h.Duration < 0 {
		return NewValidationError("Duration cannot be negative.")
	}
	if h.Duration > MaxDurationSeconds {
		return NewValidationError("Duration cannot exceed 120 seconds.")
	}
	if h.HasReward() && h.HasLinkedHabit() {
		return NewValidationError("Either reward or linked habit must be set, not both.")
	}
	if h.IsPleasant && (h.HasReward() || h.HasLinkedHabit()) {
		return NewValidationError("Pleasant habits cannot have a reward or linked habit.")
	}
	if h.Frequency < MinFrequencyDays || h.Frequency > MaxFrequencyDays {
		return NewValidationError("Frequency must be between 1 and 7 days.")
	}
	if _, err := time.Parse(TimeOfDayLayout, h.Time); err != nil {
		return NewValidationError("Time must be in HH:MM:SS format.")
	}
	return nil
}

// FirstRemindAt returns the first reminder instant on or after now: today at
// the habit's time of day, or tomorrow if that already passed.
func (h *Habit) FirstRemindAt(now time.Time) time.Time {
	at := h.occurrenceOn(now)
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}

// NextRemindAfter returns the reminder instant that follows a successful
// send at sentAt: the habit's time of day, frequency days ahead. Advancing
// from the send time rather than the stored deadline keeps a habit that
// missed several cycles from firing repeatedly to catch up.
func (h *Habit) NextRemindAfter(sentAt time.Time) time.Time {
	return h.occurrenceOn(sentAt).AddDate(0, 0, int(h.Frequency))
}

func (h *Habit) occurrenceOn(day time.Time) time.Time {
	tod, err := time.Parse(TimeOfDayLayout, h.Time)
	if err != nil {
		// Validate rejects unparseable times before persistence.
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, day.Location())
}

// HabitFilter narrows list queries. Nil fields apply no constraint. Time
// bounds compare against the habit's time of day, inclusive on both ends;
// the "HH:MM:SS" encoding makes lexicographic and chronological order agree.
type HabitFilter struct {
	IsPublic *bool
	TimeFrom *string
	TimeTo   *string
}

// Validate rejects unparseable time bounds.
func (f *HabitFilter) Validate() error {
	for _, bound := range []*string{f.TimeFrom, f.TimeTo} {
		if bound == nil {
			continue
		}
		if _, err := time.Parse(TimeOfDayLayout, *bound); err != nil {
			return NewValidationError("Time filter must be in HH:MM:SS format.")
		}
	}
	return nil
}

// Matches reports whether the habit satisfies the filter. A nil filter
// matches everything.
func (f *HabitFilter) Matches(h *Habit) bool {
	if f == nil {
		return true
	}
	if f.IsPublic != nil && h.IsPublic != *f.IsPublic {
		return false
	}
	if f.TimeFrom != nil && h.Time < *f.TimeFrom {
		return false
	}
	if f.TimeTo != nil && h.Time > *f.TimeTo {
		return false
	}
	return true
}

// HabitPatch carries a partial update. Nil fields were absent from the
// request and resolve to the currently stored value, not to a default.
type HabitPatch struct {
	Place         *string
	Time          *string
	Action        *string
	IsPleasant    *bool
	LinkedHabitID *uuid.UUID // uuid.Nil clears the reference
	Frequency     *int32
	Reward        *string // empty string clears the reward
	Duration      *int32
	IsPublic      *bool
}
