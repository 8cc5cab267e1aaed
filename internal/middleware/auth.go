package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator checks a bearer token and resolves the user id it carries.
type TokenValidator interface {
	Validate(token string) (int64, error)
}

// Auth creates a middleware enforcing bearer authentication.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondDetail(w, "Authentication credentials were not provided.", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondDetail(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userID, err := validator.Validate(parts[1])
			if err != nil {
				respondDetail(w, "Given token not valid for any token type", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user id from context, 0 when absent.
func GetUserID(ctx context.Context) int64 {
	userID, ok := ctx.Value(userIDKey).(int64)
	if !ok {
		return 0
	}
	return userID
}

// respondDetail sends an auth error in the detail envelope.
func respondDetail(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"detail":"` + message + `"}`))
}
