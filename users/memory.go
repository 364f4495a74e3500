package users

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/user/inkwell-go/auth"
)

// MemoryStore is an in-memory Store implementation used by tests. It mirrors
// the MongoStore contract, including the uniqueness errors the indexes would
// raise.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]auth.User
}

// NewMemoryStore creates an empty in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[primitive.ObjectID]auth.User)}
}

// Insert persists a new user, enforcing username and email uniqueness.
func (s *MemoryStore) Insert(ctx context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return auth.ErrDuplicateUser
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) find(match func(*auth.User) bool) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := range s.users {
		u := s.users[id]
		if match(&u) {
			return &u, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// FindByEmail looks a user up by exact email.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.find(func(u *auth.User) bool { return u.Email == email })
}

// FindByID resolves a user by its identifier.
func (s *MemoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*auth.User, error) {
	return s.find(func(u *auth.User) bool { return u.ID == id })
}

// FindByUsername looks a user up by exact username.
func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.find(func(u *auth.User) bool { return u.Username == username })
}

// FindByUsernameOrEmail returns any user matching either field exactly.
func (s *MemoryStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*auth.User, error) {
	return s.find(func(u *auth.User) bool { return u.Username == username || u.Email == email })
}

// UpdateProfile applies the non-nil fields and returns the updated record.
func (s *MemoryStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	if update.Username != nil {
		for otherID, u := range s.users {
			if otherID != id && u.Username == *update.Username {
				return nil, auth.ErrDuplicateUser
			}
		}
		user.Username = *update.Username
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	user.UpdatedAt = time.Now().UTC()

	s.users[id] = user
	return &user, nil
}
