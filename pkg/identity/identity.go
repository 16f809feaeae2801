// Package identity propagates the caller's user id through request contexts.
// The id comes from a trusted header set by whatever sits in front of the API;
// nothing here authenticates it.
package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Header carries the caller's user id.
const Header = "X-User-ID"

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFromContext returns the caller's user id, if one was supplied.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey).(int64)
	return v, ok
}

// WithUserID stores userID in the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// FromHeader copies a valid X-User-ID header into the request context.
// A missing header passes through; a malformed one is rejected with 400.
func FromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(Header))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_user_id_header"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}
