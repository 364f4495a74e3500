// Package auth is responsible for authentication and authorization logic:
// user registration, login, token issuance and verification, and the HTTP
// middleware that gates protected routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user in the system. The `json:"-"` tag on HashedPassword
// keeps the credential hash out of every API response.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"password" json:"-"`
	Avatar         string             `bson:"avatar" json:"avatar"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Sentinel errors returned by UserStore implementations. Services translate
// these into apperror values at the boundary.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned when an insert or update violates the
	// username or email uniqueness constraint.
	ErrDuplicateUser = errors.New("username or email already exists")
)

// UserStore is the credential store surface the auth module depends on.
// The mongo-backed implementation lives in the users package; tests use an
// in-memory implementation.
type UserStore interface {
	// Insert persists a new user and fills in its generated ID.
	Insert(ctx context.Context, user *User) error
	// FindByEmail looks a user up by exact email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByID resolves a user by its stable identifier.
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	// FindByUsernameOrEmail returns any user matching either field exactly.
	// Used for the registration conflict pre-check.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
}

// GeneratedAvatarURL derives a deterministic avatar image URL from a
// username. Attached at registration and regenerated on username change.
func GeneratedAvatarURL(username string) string {
	return fmt.Sprintf("https://api.dicebear.com/7.x/initials/svg?seed=%s", url.QueryEscape(username))
}
