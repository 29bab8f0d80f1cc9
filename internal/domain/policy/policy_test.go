package policy

import (
	"testing"

	"habit-tracker/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	ownerID := uuid.New()
	strangerID := uuid.New()

	owner := entity.Principal{UserID: ownerID}
	stranger := entity.Principal{UserID: strangerID}
	moderator := entity.Principal{UserID: strangerID, IsModerator: true}
	anonymous := entity.Principal{}

	publicHabit := &entity.Habit{ID: uuid.New(), UserID: ownerID, IsPublic: true}
	privateHabit := &entity.Habit{ID: uuid.New(), UserID: ownerID, IsPublic: false}

	tests := []struct {
		name       string
		principal  entity.Principal
		habit      *entity.Habit
		action     Action
		allowed    bool
		denyReason Reason
	}{
		{"owner reads own private habit", owner, privateHabit, ActionRead, true, ""},
		{"stranger reads private habit", stranger, privateHabit, ActionRead, false, ReasonNotPublic},
		{"stranger reads public habit", stranger, publicHabit, ActionRead, true, ""},
		{"anonymous reads public habit", anonymous, publicHabit, ActionRead, true, ""},
		{"anonymous reads private habit", anonymous, privateHabit, ActionRead, false, ReasonNotPublic},
		{"moderator reads private habit", moderator, privateHabit, ActionRead, false, ReasonNotPublic},

		{"owner updates own habit", owner, privateHabit, ActionUpdate, true, ""},
		{"stranger updates habit", stranger, publicHabit, ActionUpdate, false, ReasonNotOwner},
		{"moderator updates habit", moderator, publicHabit, ActionUpdate, false, ReasonNotOwner},
		{"anonymous updates habit", anonymous, publicHabit, ActionUpdate, false, ReasonNotOwner},

		{"owner deletes own habit", owner, privateHabit, ActionDelete, true, ""},
		{"moderator deletes habit", moderator, privateHabit, ActionDelete, true, ""},
		{"stranger deletes habit", stranger, privateHabit, ActionDelete, false, ReasonNotModerator},
		{"anonymous deletes habit", anonymous, publicHabit, ActionDelete, false, ReasonNotModerator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.principal, tt.habit, tt.action)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, tt.denyReason, d.Reason)
			}
		})
	}
}

func TestAnonymousNeverOwns(t *testing.T) {
	// A habit row with a zero owner id must not be editable by anonymous
	// callers even though the ids compare equal.
	habit := &entity.Habit{ID: uuid.New(), UserID: uuid.Nil, IsPublic: true}

	d := Decide(entity.Principal{}, habit, ActionUpdate)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonNotOwner, d.Reason)
}

func TestDeniedError(t *testing.T) {
	err := Denied(deny(ReasonNotPublic))

	var deniedErr *DeniedError
	assert.ErrorAs(t, err, &deniedErr)
	assert.Equal(t, ReasonNotPublic, deniedErr.Reason)
	assert.Equal(t, "this habit is not public", deniedErr.Error())
}
