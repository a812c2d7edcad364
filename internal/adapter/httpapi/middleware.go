package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "user_id"

// AuthMiddleware validates the bearer token and resolves the acting user
// from the X-User-Id header. The user ID is stored on the request context
// and handed to usecases as an explicit parameter; nothing downstream reads
// it from ambient state.
func AuthMiddleware(validToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if token != validToken {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			userID, err := uuid.Parse(r.Header.Get("X-User-Id"))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "missing or invalid X-User-Id header")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestUserID returns the user resolved by AuthMiddleware.
func requestUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	return userID, ok
}
