// Context utilities for carrying the authenticated identity through a
// request. The middleware stores the resolved *User; handlers read it back
// with IdentityFromContext.
package auth

import (
	"context"
)

// contextKey is a private type for context keys, preventing collisions with
// keys defined in other packages.
type contextKey string

const identityContextKey contextKey = "auth_identity"

// NewContextWithIdentity returns a child context carrying the resolved user.
func NewContextWithIdentity(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, identityContextKey, user)
}

// IdentityFromContext extracts the authenticated user from the context.
// The boolean reports whether an identity was attached.
func IdentityFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(identityContextKey).(*User)
	return user, ok
}
