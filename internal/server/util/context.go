package util

import (
	"context"
	"net/http"

	"studentportal/internal/shared"
)

type contextKey string

// userKey carries the authenticated user through the request context.
const userKey contextKey = "user"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *shared.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// CurrentUser returns the authenticated user from the request context, or nil
// on unauthenticated routes.
func CurrentUser(r *http.Request) *shared.User {
	user, _ := r.Context().Value(userKey).(*shared.User)
	return user
}
