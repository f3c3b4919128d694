package httputil

import (
	"context"
	"net/http"
)

type contextKey string

const userIDKey contextKey = "userID"

// WithUserID returns r carrying the authenticated staff member's id.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(ContextWithUserID(r.Context(), userID))
}

// ContextWithUserID is WithUserID for code that only holds a context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the user id set by the auth middleware, or "".
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
