package policy

import (
	"habit-tracker/internal/domain/entity"
)

// Action is an operation a principal may attempt on a habit.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Reason explains a denial. It feeds HTTP status selection but the policy
// itself knows nothing about transports.
type Reason string

const (
	ReasonNotOwner     Reason = "NotOwner"
	ReasonNotModerator Reason = "NotModerator"
	ReasonNotPublic    Reason = "NotPublic"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  Reason // set only when denied
}

var allow = Decision{Allowed: true}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Decide resolves whether principal may perform action on habit.
//
// Reads of public habits are open to everyone, anonymous callers included.
// Everything else is owner-only, except delete, which moderators may also
// perform.
func Decide(principal entity.Principal, habit *entity.Habit, action Action) Decision {
	isOwner := !principal.Anonymous() && principal.UserID == habit.UserID

	switch action {
	case ActionRead:
		if habit.IsPublic || isOwner {
			return allow
		}
		return deny(ReasonNotPublic)
	case ActionUpdate:
		if isOwner {
			return allow
		}
		return deny(ReasonNotOwner)
	case ActionDelete:
		if isOwner {
			return allow
		}
		if principal.IsModerator {
			return allow
		}
		return deny(ReasonNotModerator)
	default:
		return deny(ReasonNotOwner)
	}
}

// DeniedError is returned by services when a policy check fails.
type DeniedError struct {
	Reason Reason
}

func (e *DeniedError) Error() string {
	switch e.Reason {
	case ReasonNotOwner:
		return "only the owner may modify this habit"
	case ReasonNotModerator:
		return "only the owner or a moderator may delete this habit"
	case ReasonNotPublic:
		return "this habit is not public"
	default:
		return "operation not permitted"
	}
}

// Denied wraps a deny decision into an error.
func Denied(d Decision) error {
	return &DeniedError{Reason: d.Reason}
}
