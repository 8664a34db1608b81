package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"spellstreak/internal/security"
	"spellstreak/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const identityContextKey ContextKey = "identity"

// Middleware holds dependencies for middleware functions.
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance.
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter) *Middleware {
	return &Middleware{authService: authService, limiter: limiter}
}

// RequireAuth verifies the bearer token and puts the identity claims in
// the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "sign in required"})
			return
		}

		claims, err := m.authService.Verify(token)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects requests from IPs exceeding the limiter's budget.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.ClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		next(w, r)
	}
}

// Logging logs HTTP requests.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// IdentityFromContext retrieves the verified identity claims, nil when
// the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *security.Claims {
	claims, ok := ctx.Value(identityContextKey).(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}
