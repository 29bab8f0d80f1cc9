package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/policy"
	"habit-tracker/internal/domain/service"
	"habit-tracker/internal/transport/http/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthService resolves fixed tokens onto principals. Everything else
// returns canned values.
type stubAuthService struct {
	tokens map[string]entity.Principal
	user   *entity.User
	pair   *service.TokenPair
}

func (s *stubAuthService) Register(_ context.Context, input *entity.UserCreate) (*entity.User, error) {
	if s.user != nil {
		return s.user, nil
	}
	return &entity.User{ID: uuid.New(), Email: input.Email}, nil
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*entity.User, *service.TokenPair, error) {
	if s.pair == nil {
		return nil, nil, entity.ErrInvalidCredentials
	}
	return s.user, s.pair, nil
}

func (s *stubAuthService) RefreshToken(_ context.Context, _ string) (*service.TokenPair, error) {
	if s.pair == nil {
		return nil, entity.ErrSessionNotFound
	}
	return s.pair, nil
}

func (s *stubAuthService) Logout(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func (s *stubAuthService) ValidateAccessToken(_ context.Context, accessToken string) (entity.Principal, uuid.UUID, error) {
	principal, ok := s.tokens[accessToken]
	if !ok {
		return entity.Principal{}, uuid.Nil, entity.ErrSessionNotFound
	}
	return principal, uuid.New(), nil
}

// stubHabitService returns preconfigured results per call.
type stubHabitService struct {
	createFn   func(ownerID uuid.UUID, input *service.HabitCreate) (*entity.Habit, error)
	getFn      func(principal entity.Principal, habitID uuid.UUID) (*entity.Habit, error)
	owned      []*entity.Habit
	public     []*entity.Habit
	lastFilter *entity.HabitFilter
	updateFn   func(principal entity.Principal, habitID uuid.UUID, patch *entity.HabitPatch) (*entity.Habit, error)
	deleteFn   func(principal entity.Principal, habitID uuid.UUID) error
}

func (s *stubHabitService) Create(_ context.Context, ownerID uuid.UUID, input *service.HabitCreate) (*entity.Habit, error) {
	return s.createFn(ownerID, input)
}

func (s *stubHabitService) Get(_ context.Context, principal entity.Principal, habitID uuid.UUID) (*entity.Habit, error) {
	return s.getFn(principal, habitID)
}

func (s *stubHabitService) ListOwned(_ context.Context, _ uuid.UUID, filter *entity.HabitFilter) ([]*entity.Habit, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}
	s.lastFilter = filter
	var out []*entity.Habit
	for _, habit := range s.owned {
		if filter.Matches(habit) {
			out = append(out, habit)
		}
	}
	return out, nil
}

func (s *stubHabitService) ListPublic(_ context.Context, filter *entity.HabitFilter) ([]*entity.Habit, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, err
		}
	}
	s.lastFilter = filter
	return s.public, nil
}

func (s *stubHabitService) Update(_ context.Context, principal entity.Principal, habitID uuid.UUID, patch *entity.HabitPatch) (*entity.Habit, error) {
	return s.updateFn(principal, habitID, patch)
}

func (s *stubHabitService) Delete(_ context.Context, principal entity.Principal, habitID uuid.UUID) error {
	return s.deleteFn(principal, habitID)
}

// stubUserService backs the profile endpoints.
type stubUserService struct {
	user    *entity.User
	profile *entity.Profile
}

func (s *stubUserService) Register(_ context.Context, _ *entity.UserCreate) (*entity.User, error) {
	return s.user, nil
}

func (s *stubUserService) GetByID(_ context.Context, _ uuid.UUID) (*entity.User, error) {
	if s.user == nil {
		return nil, entity.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubUserService) GetByEmail(_ context.Context, _ string) (*entity.User, error) {
	return s.user, nil
}

func (s *stubUserService) ValidatePassword(_ context.Context, _ *entity.User, _ string) error {
	return nil
}

func (s *stubUserService) GetProfile(_ context.Context, _ uuid.UUID) (*entity.Profile, error) {
	if s.profile == nil {
		return nil, entity.ErrProfileNotFound
	}
	return s.profile, nil
}

func (s *stubUserService) RegisterTelegramID(_ context.Context, _ uuid.UUID, telegramID string) (*entity.Profile, error) {
	s.profile.TelegramID = &telegramID
	return s.profile, nil
}

func (s *stubUserService) DeleteAccount(_ context.Context, _ uuid.UUID) error {
	return nil
}

func sampleHabit(ownerID uuid.UUID) *entity.Habit {
	return &entity.Habit{
		ID:        uuid.New(),
		UserID:    ownerID,
		Place:     "park",
		Time:      "07:30:00",
		Action:    "run",
		Frequency: 1,
		Duration:  60,
	}
}

type testEnv struct {
	server  *httptest.Server
	ownerID uuid.UUID
	habits  *stubHabitService
	users   *stubUserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ownerID := uuid.New()
	auth := &stubAuthService{
		tokens: map[string]entity.Principal{
			"owner-token":     {UserID: ownerID},
			"moderator-token": {UserID: uuid.New(), IsModerator: true},
		},
		user: &entity.User{ID: ownerID, Email: "owner@example.com"},
		pair: &service.TokenPair{
			AccessToken:           "access",
			RefreshToken:          "refresh",
			AccessTokenExpiresAt:  time.Now().Add(15 * time.Minute),
			RefreshTokenExpiresAt: time.Now().Add(24 * time.Hour),
		},
	}
	habits := &stubHabitService{}
	users := &stubUserService{
		user:    &entity.User{ID: ownerID, Email: "owner@example.com"},
		profile: &entity.Profile{UserID: ownerID},
	}

	router := NewRouter(
		NewUserHandler(auth, users),
		NewHabitHandler(habits),
		middleware.NewAuthMiddleware(auth),
		middleware.NewRateLimiter(10000),
	)

	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)

	return &testEnv{server: server, ownerID: ownerID, habits: habits, users: users}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCreateHabitEndpoint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("requires auth", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/habits", "", map[string]any{})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("created", func(t *testing.T) {
		env.habits.createFn = func(ownerID uuid.UUID, input *service.HabitCreate) (*entity.Habit, error) {
			habit := sampleHabit(ownerID)
			habit.Place = input.Place
			return habit, nil
		}

		resp := env.do(t, http.MethodPost, "/api/habits", "owner-token", map[string]any{
			"place":    "park",
			"time":     "07:30:00",
			"action":   "run",
			"duration": 60,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]any
		decodeBody(t, resp, &body)
		assert.Equal(t, "park", body["place"])
		assert.Equal(t, env.ownerID.String(), body["user"])
	})

	t.Run("validation failure surfaces the rule", func(t *testing.T) {
		env.habits.createFn = func(_ uuid.UUID, _ *service.HabitCreate) (*entity.Habit, error) {
			return nil, entity.NewValidationError("Duration cannot exceed 120 seconds.")
		}

		resp := env.do(t, http.MethodPost, "/api/habits", "owner-token", map[string]any{"duration": 150})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body map[string]string
		decodeBody(t, resp, &body)
		assert.Equal(t, "Duration cannot exceed 120 seconds.", body["error"])
	})
}

func TestListHabitsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.habits.owned = []*entity.Habit{sampleHabit(env.ownerID), sampleHabit(env.ownerID)}

	resp := env.do(t, http.MethodGet, "/api/habits", "owner-token", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []habitResponse `json:"results"`
	}
	decodeBody(t, resp, &body)
	assert.Len(t, body.Results, 2)
}

func TestListHabitsQueryFilters(t *testing.T) {
	env := newTestEnv(t)

	morning := sampleHabit(env.ownerID)
	morning.Time = "07:30:00"
	morning.IsPublic = true
	evening := sampleHabit(env.ownerID)
	evening.Time = "19:00:00"
	env.habits.owned = []*entity.Habit{morning, evening}

	t.Run("visibility filter", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/habits?is_public=true", "owner-token", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Results []habitResponse `json:"results"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Results, 1)
		assert.Equal(t, morning.ID, body.Results[0].ID)
	})

	t.Run("time window", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/habits?time_from=18:00:00&time_to=23:59:59", "owner-token", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Results []habitResponse `json:"results"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Results, 1)
		assert.Equal(t, evening.ID, body.Results[0].ID)
	})

	t.Run("bad boolean", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/habits?is_public=maybe", "owner-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad time bound", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/habits?time_from=7:30", "owner-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("public route ignores is_public", func(t *testing.T) {
		env.habits.public = []*entity.Habit{morning}

		resp := env.do(t, http.MethodGet, "/api/habits/public?is_public=false&time_to=12:00:00", "", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		require.NotNil(t, env.habits.lastFilter)
		assert.Nil(t, env.habits.lastFilter.IsPublic)
		require.NotNil(t, env.habits.lastFilter.TimeTo)
		assert.Equal(t, "12:00:00", *env.habits.lastFilter.TimeTo)
	})
}

func TestListPublicHabitsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.habits.public = []*entity.Habit{sampleHabit(uuid.New())}

	// No token at all: the public listing is open to anonymous callers.
	resp := env.do(t, http.MethodGet, "/api/habits/public", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body []habitResponse
	decodeBody(t, resp, &body)
	assert.Len(t, body, 1)
}

func TestGetHabitEndpoint(t *testing.T) {
	env := newTestEnv(t)
	habit := sampleHabit(env.ownerID)

	env.habits.getFn = func(principal entity.Principal, habitID uuid.UUID) (*entity.Habit, error) {
		if habitID != habit.ID {
			return nil, entity.ErrHabitNotFound
		}
		if d := policy.Decide(principal, habit, policy.ActionRead); !d.Allowed {
			return nil, policy.Denied(d)
		}
		return habit, nil
	}

	t.Run("owner reads private habit", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/habits/"+habit.ID.String(), "owner-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("anonymous sees private habit as missing", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/habits/"+habit.ID.String(), "", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid token is rejected, not demoted", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/habits/"+habit.ID.String(), "garbage", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/habits/not-a-uuid", "owner-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateHabitEndpoint(t *testing.T) {
	env := newTestEnv(t)
	habit := sampleHabit(env.ownerID)

	env.habits.updateFn = func(principal entity.Principal, habitID uuid.UUID, patch *entity.HabitPatch) (*entity.Habit, error) {
		if d := policy.Decide(principal, habit, policy.ActionUpdate); !d.Allowed {
			return nil, policy.Denied(d)
		}
		if patch.Action != nil {
			habit.Action = *patch.Action
		}
		return habit, nil
	}

	t.Run("owner patches", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/habits/"+habit.ID.String(), "owner-token", map[string]any{"action": "sprint"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		decodeBody(t, resp, &body)
		assert.Equal(t, "sprint", body["action"])
	})

	t.Run("moderator forbidden", func(t *testing.T) {
		resp := env.do(t, http.MethodPatch, "/api/habits/"+habit.ID.String(), "moderator-token", map[string]any{"action": "sprint"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestDeleteHabitEndpoint(t *testing.T) {
	env := newTestEnv(t)
	habit := sampleHabit(env.ownerID)

	env.habits.deleteFn = func(principal entity.Principal, habitID uuid.UUID) error {
		if habitID != habit.ID {
			return entity.ErrHabitNotFound
		}
		if d := policy.Decide(principal, habit, policy.ActionDelete); !d.Allowed {
			return policy.Denied(d)
		}
		return nil
	}

	t.Run("moderator deletes", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, "/api/habits/"+habit.ID.String(), "moderator-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("unknown habit", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, "/api/habits/"+uuid.NewString(), "owner-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	t.Run("register", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
			"email":    "owner@example.com",
			"password": "secret-password",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]any
		decodeBody(t, resp, &body)
		assert.Equal(t, "owner@example.com", body["email"])
	})

	t.Run("login returns token pair", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
			"email":    "owner@example.com",
			"password": "secret-password",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body tokenResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "access", body.AccessToken)
		assert.Equal(t, "refresh", body.RefreshToken)
	})

	t.Run("refresh without token", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]any{})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("logout", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/logout", "owner-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)

	t.Run("profile without telegram id", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/users/profile", "owner-token", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		decodeBody(t, resp, &body)
		assert.Equal(t, "owner@example.com", body["email"])
		assert.Nil(t, body["telegram_id"])
	})

	t.Run("register telegram id", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/telegram/register", "owner-token", map[string]any{
			"telegram_id": "12345",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		decodeBody(t, resp, &body)
		assert.Equal(t, "Telegram ID registered successfully", body["message"])
	})

	t.Run("delete account", func(t *testing.T) {
		resp := env.do(t, http.MethodDelete, "/api/users/account", "owner-token", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
