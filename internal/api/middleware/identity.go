package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lessonforge/lessonforge/internal/api"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// RequireUser extracts the caller identity from the X-User-ID header and
// injects it into the request context. Requests without one are rejected;
// ownership checks further down need a caller to compare against.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			api.Error(w, http.StatusUnauthorized, "missing user identity")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the caller identity from context.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
