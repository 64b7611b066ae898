package common

import "context"

type contextKey int

const usernameKey contextKey = iota

// WithUsername stores the authenticated username in the request context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromContext retrieves the authenticated username from context,
// or "" when the request is anonymous.
func UsernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(usernameKey).(string)
	return u
}
