package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/policy"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleServiceError maps domain errors onto HTTP statuses. Validation
// failures carry the violated rule verbatim so clients see which invariant
// broke, not a generic bad request.
func handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *entity.ValidationError
	var deniedErr *policy.DeniedError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Reason)
	case errors.As(err, &deniedErr):
		// Private habits stay invisible to non-owners.
		if deniedErr.Reason == policy.ReasonNotPublic {
			writeError(w, http.StatusNotFound, entity.ErrHabitNotFound.Error())
			return
		}
		writeError(w, http.StatusForbidden, deniedErr.Error())
	case errors.Is(err, entity.ErrHabitNotFound),
		errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrInvalidCredentials),
		errors.Is(err, entity.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
