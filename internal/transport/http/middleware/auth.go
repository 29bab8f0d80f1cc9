package middleware

import (
	"context"
	"net/http"
	"strings"

	"habit-tracker/internal/domain/entity"
	"habit-tracker/internal/domain/service"

	"github.com/google/uuid"
)

type contextKey string

const (
	principalKey contextKey = "principal"
	sessionIDKey contextKey = "sessionID"
)

// AuthMiddleware validates bearer tokens against the auth service
type AuthMiddleware struct {
	authService service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// Auth requires a valid bearer token and stores the principal in context
func (m *AuthMiddleware) Auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "Missing or malformed authorization header", http.StatusUnauthorized)
			return
		}

		principal, sessionID, err := m.authService.ValidateAccessToken(r.Context(), token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := withPrincipal(r.Context(), principal, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OptionalAuth resolves a principal when a token is present but lets
// anonymous requests through. Used for routes readable by anyone.
func (m *AuthMiddleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, sessionID, err := m.authService.ValidateAccessToken(r.Context(), token)
		if err != nil {
			// A presented-but-invalid token is rejected rather than demoted
			// to anonymous.
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := withPrincipal(r.Context(), principal, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func withPrincipal(ctx context.Context, principal entity.Principal, sessionID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, principalKey, principal)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetPrincipal extracts the principal from request context. The zero value
// is an anonymous principal.
func GetPrincipal(r *http.Request) entity.Principal {
	principal, ok := r.Context().Value(principalKey).(entity.Principal)
	if !ok {
		return entity.Principal{}
	}
	return principal
}

// GetSessionID extracts the session ID from request context
func GetSessionID(r *http.Request) uuid.UUID {
	sessionID, ok := r.Context().Value(sessionIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return sessionID
}
