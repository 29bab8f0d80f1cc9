package handler

import (
	"net/http"

	"habit-tracker/internal/transport/http/middleware"
)

// Router sets up HTTP routes
type Router struct {
	userHandler    *UserHandler
	habitHandler   *HabitHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
	mux            *http.ServeMux
}

// NewRouter creates a new router
func NewRouter(
	userHandler *UserHandler,
	habitHandler *HabitHandler,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) *Router {
	return &Router{
		userHandler:    userHandler,
		habitHandler:   habitHandler,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		mux:            http.NewServeMux(),
	}
}

// Setup configures all routes
func (r *Router) Setup() http.Handler {

	r.mux.HandleFunc("POST /api/auth/register", r.userHandler.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.userHandler.Login)
	r.mux.HandleFunc("POST /api/auth/refresh", r.userHandler.RefreshToken)
	r.mux.HandleFunc("POST /api/auth/logout", r.authMiddleware.Auth(r.userHandler.Logout))

	r.mux.HandleFunc("GET /api/users/profile", r.authMiddleware.Auth(r.userHandler.GetProfile))
	r.mux.HandleFunc("DELETE /api/users/account", r.authMiddleware.Auth(r.userHandler.DeleteAccount))
	r.mux.HandleFunc("POST /api/telegram/register", r.authMiddleware.Auth(r.userHandler.RegisterTelegram))

	// Public habit browsing is open to anonymous callers; everything else
	// requires a bearer token.
	r.mux.HandleFunc("GET /api/habits/public", r.habitHandler.ListPublicHabits)
	r.mux.HandleFunc("POST /api/habits", r.authMiddleware.Auth(r.habitHandler.CreateHabit))
	r.mux.HandleFunc("GET /api/habits", r.authMiddleware.Auth(r.habitHandler.ListHabits))
	r.mux.HandleFunc("GET /api/habits/{id}", r.authMiddleware.OptionalAuth(r.habitHandler.GetHabit))
	r.mux.HandleFunc("PATCH /api/habits/{id}", r.authMiddleware.Auth(r.habitHandler.UpdateHabit))
	r.mux.HandleFunc("DELETE /api/habits/{id}", r.authMiddleware.Auth(r.habitHandler.DeleteHabit))

	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = r.mux

	handler = middleware.Logging(handler)
	handler = r.rateLimiter.Limit(handler)

	return handler
}
