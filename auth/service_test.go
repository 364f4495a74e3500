package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/users"
)

func newTestService() (*auth.Service, *users.MemoryStore, *auth.TokenService) {
	store := users.NewMemoryStore()
	tokens := auth.NewTokenService(config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenDuration: time.Hour,
	})
	return auth.NewService(store, tokens), store, tokens
}

func registerAlice(t *testing.T, svc *auth.Service) *auth.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), auth.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	svc, store, tokens := newTestService()

	resp := registerAlice(t, svc)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)
	assert.Contains(t, resp.User.Avatar, "alice")

	// The token must verify and reference the stored record.
	userID, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)

	stored, err := store.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.HashedPassword)
	assert.NotEmpty(t, stored.HashedPassword)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestRegisterDuplicate(t *testing.T) {
	tests := []struct {
		name string
		req  auth.RegisterRequest
	}{
		{
			name: "same username",
			req:  auth.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "pw123456"},
		},
		{
			name: "same email",
			req:  auth.RegisterRequest{Username: "someone", Email: "alice@example.com", Password: "pw123456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestService()
			registerAlice(t, svc)

			_, err := svc.Register(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, apperror.IsConflictError(err))
			appErr, ok := apperror.FromError(err)
			require.True(t, ok)
			assert.Equal(t, "username or email already exists", appErr.Message)

			// No second record may exist.
			_, err = store.FindByEmail(context.Background(), "other@example.com")
			assert.ErrorIs(t, err, auth.ErrUserNotFound)
		})
	}
}

func TestRegisterCaseSensitiveUniqueness(t *testing.T) {
	svc, _, _ := newTestService()
	registerAlice(t, svc)

	// Uniqueness is an exact match; a different casing is a different user.
	resp, err := svc.Register(context.Background(), auth.RegisterRequest{
		Username: "Alice",
		Email:    "Alice@example.com",
		Password: "pw123456",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.User.Username)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	registered := registerAlice(t, svc)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLoginFailureIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService()
	registerAlice(t, svc)

	wrongPassword := func() error {
		_, err := svc.Login(context.Background(), auth.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong-password",
		})
		return err
	}
	unknownEmail := func() error {
		_, err := svc.Login(context.Background(), auth.LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})
		return err
	}

	errA := wrongPassword()
	errB := unknownEmail()
	require.Error(t, errA)
	require.Error(t, errB)

	// Both paths return the same kind and the same message so the response
	// never reveals whether the email exists.
	assert.True(t, apperror.IsAuthError(errA))
	assert.True(t, apperror.IsAuthError(errB))

	appA, _ := apperror.FromError(errA)
	appB, _ := apperror.FromError(errB)
	assert.Equal(t, appA.Message, appB.Message)
	assert.Equal(t, "invalid email or password", appA.Message)
}
