// HTTP middleware gating protected routes. It extracts the bearer token,
// verifies it, resolves the identity's current record from the credential
// store, and attaches it to the request context. It is a pure gate: it never
// mutates state.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/user/inkwell-go/apperror"
)

// Middleware returns the authentication middleware. Requests without a valid
// bearer token, or whose token references a user that no longer exists, are
// rejected with 401 before reaching any handler.
func Middleware(tokens *TokenService, store UserStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, apperror.NewAuthError("authorization header is missing", nil))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteError(w, r, apperror.NewAuthError("authorization header format must be Bearer {token}", nil))
				return
			}

			userIDHex, err := tokens.Verify(parts[1])
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					WriteError(w, r, apperror.NewAuthError("token has expired", err))
					return
				}
				WriteError(w, r, apperror.NewAuthError("invalid token", err))
				return
			}

			userID, err := primitive.ObjectIDFromHex(userIDHex)
			if err != nil {
				WriteError(w, r, apperror.NewAuthError("invalid token", err))
				return
			}

			// The token only proves who the caller was at issuance; resolve
			// the current record so downstream handlers see a live identity.
			user, err := store.FindByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					WriteError(w, r, apperror.NewAuthError("unknown identity", nil))
					return
				}
				WriteError(w, r, apperror.NewDatabaseError("failed to resolve identity", err))
				return
			}

			ctx := NewContextWithIdentity(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
