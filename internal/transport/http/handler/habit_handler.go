package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/service"
	"habit-tracker/internal/transport/http/middleware"

	"github.com/google/uuid"
)

// HabitHandler handles habit-related HTTP requests
type HabitHandler struct {
	habitService service.HabitService
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habitService service.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

type habitResponse struct {
	ID          uuid.UUID  `json:"id"`
	User        uuid.UUID  `json:"user"`
	Place       string     `json:"place"`
	Time        string     `json:"time"`
	Action      string     `json:"action"`
	IsPleasant  bool       `json:"is_pleasant"`
	LinkedHabit *uuid.UUID `json:"linked_habit"`
	Frequency   int32      `json:"frequency"`
	Reward      *string    `json:"reward"`
	Duration    int32      `json:"duration"`
	IsPublic    bool       `json:"is_public"`
}

func toHabitResponse(habit *entity.Habit) habitResponse {
	return habitResponse{
		ID:          habit.ID,
		User:        habit.UserID,
		Place:       habit.Place,
		Time:        habit.Time,
		Action:      habit.Action,
		IsPleasant:  habit.IsPleasant,
		LinkedHabit: habit.LinkedHabitID,
		Frequency:   habit.Frequency,
		Reward:      habit.Reward,
		Duration:    habit.Duration,
		IsPublic:    habit.IsPublic,
	}
}

func toHabitResponses(habits []*entity.Habit) []habitResponse {
	out := make([]habitResponse, 0, len(habits))
	for _, habit := range habits {
		out = append(out, toHabitResponse(habit))
	}
	return out
}

// CreateHabit handles POST /api/habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	var req struct {
		Place       string     `json:"place"`
		Time        string     `json:"time"`
		Action      string     `json:"action"`
		IsPleasant  *bool      `json:"is_pleasant"`
		LinkedHabit *uuid.UUID `json:"linked_habit"`
		Frequency   *int32     `json:"frequency"`
		Reward      *string    `json:"reward"`
		Duration    int32      `json:"duration"`
		IsPublic    *bool      `json:"is_public"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := &service.HabitCreate{
		Place:         req.Place,
		Time:          req.Time,
		Action:        req.Action,
		IsPleasant:    req.IsPleasant,
		LinkedHabitID: req.LinkedHabit,
		Frequency:     req.Frequency,
		Reward:        req.Reward,
		Duration:      req.Duration,
		IsPublic:      req.IsPublic,
	}

	habit, err := h.habitService.Create(r.Context(), principal.UserID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHabitResponse(habit))
}

// habitFilterFromQuery builds a list filter from query parameters. The
// public listing ignores is_public since that route already fixes it.
func habitFilterFromQuery(r *http.Request, withVisibility bool) (*entity.HabitFilter, error) {
	q := r.URL.Query()
	filter := &entity.HabitFilter{}

	if withVisibility {
		if raw := q.Get("is_public"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, entity.NewValidationError("is_public must be a boolean.")
			}
			filter.IsPublic = &v
		}
	}
	if raw := q.Get("time_from"); raw != "" {
		filter.TimeFrom = &raw
	}
	if raw := q.Get("time_to"); raw != "" {
		filter.TimeTo = &raw
	}

	return filter, nil
}

// ListHabits handles GET /api/habits
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r)

	filter, err := habitFilterFromQuery(r, true)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	habits, err := h.habitService.ListOwned(r.Context(), principal.UserID, filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": toHabitResponses(habits),
	})
}

// ListPublicHabits handles GET /api/habits/public, open to anonymous callers
func (h *HabitHandler) ListPublicHabits(w http.ResponseWriter, r *http.Request) {
	filter, err := habitFilterFromQuery(r, false)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	habits, err := h.habitService.ListPublic(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponses(habits))
}

// GetHabit handles GET /api/habits/{id}
func (h *HabitHandler) GetHabit(w http.ResponseWriter, r *http.Request) {
	habitID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, entity.ErrHabitNotFound.Error())
		return
	}

	habit, err := h.habitService.Get(r.Context(), middleware.GetPrincipal(r), habitID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(habit))
}

// UpdateHabit handles PATCH /api/habits/{id}
func (h *HabitHandler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	habitID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, entity.ErrHabitNotFound.Error())
		return
	}

	var req struct {
		Place       *string    `json:"place"`
		Time        *string    `json:"time"`
		Action      *string    `json:"action"`
		IsPleasant  *bool      `json:"is_pleasant"`
		LinkedHabit *uuid.UUID `json:"linked_habit"`
		Frequency   *int32     `json:"frequency"`
		Reward      *string    `json:"reward"`
		Duration    *int32     `json:"duration"`
		IsPublic    *bool      `json:"is_public"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	patch := &entity.HabitPatch{
		Place:         req.Place,
		Time:          req.Time,
		Action:        req.Action,
		IsPleasant:    req.IsPleasant,
		LinkedHabitID: req.LinkedHabit,
		Frequency:     req.Frequency,
		Reward:        req.Reward,
		Duration:      req.Duration,
		IsPublic:      req.IsPublic,
	}

	habit, err := h.habitService.Update(r.Context(), middleware.GetPrincipal(r), habitID, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(habit))
}

// DeleteHabit handles DELETE /api/habits/{id}
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	habitID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, entity.ErrHabitNotFound.Error())
		return
	}

	if err := h.habitService.Delete(r.Context(), middleware.GetPrincipal(r), habitID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
