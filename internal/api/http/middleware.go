package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/logger"
	"cyclerent-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

// claimsFrom pulls the authenticated claims out of the request context.
func claimsFrom(r *http.Request) *security.UserClaims {
	claims, _ := r.Context().Value(claimsKey).(*security.UserClaims)
	return claims
}

// authMiddleware validates the bearer token and stores the claims on the
// request context.
func authMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireRole gates a handler on the caller's role.
func requireRole(role domain.UserRole, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		if claims == nil || claims.Role != role {
			respondJSON(w, http.StatusForbidden, errorBody{Error: "insufficient permissions"})
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs one line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.InfoContext(r.Context(), "http request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration_ms", time.Since(start).Milliseconds())
	})
}
