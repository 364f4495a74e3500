package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/inkwell-go/apperror"
)

// invalidCredentialsMessage is shared by every login failure path so the
// response never reveals whether the email exists.
const invalidCredentialsMessage = "invalid email or password"

// Service provides registration and login on top of a UserStore and a
// TokenService. Dependencies are injected explicitly via the constructor.
type Service struct {
	store  UserStore
	tokens *TokenService
}

// NewService creates a new auth Service.
func NewService(store UserStore, tokens *TokenService) *Service {
	return &Service{store: store, tokens: tokens}
}

// Register creates a new user and returns it together with a freshly issued
// token. It fails with a conflict error when the username or email is
// already taken (exact, case-sensitive match).
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	// Pre-check mirrors the unique indexes so the common case gets a clean
	// conflict message; the indexes remain the backstop under races.
	existing, err := s.store.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, apperror.NewDatabaseError("failed to check existing users", err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError("username or email already exists", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: string(hashedPassword),
		Avatar:         GeneratedAvatarURL(req.Username),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return nil, apperror.NewConflictError("username or email already exists", nil)
		}
		return nil, apperror.NewDatabaseError("failed to create user", err)
	}

	return s.issueFor(user)
}

// Login authenticates a user by email and password. Both the unknown-email
// and wrong-password paths return the identical error kind and message.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperror.NewAuthError(invalidCredentialsMessage, nil)
		}
		log.Error().Err(err).Msg("login: user lookup failed")
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError(invalidCredentialsMessage, nil)
	}

	return s.issueFor(user)
}

func (s *Service) issueFor(user *User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}
	return &AuthResponse{Token: token, User: PublicInfo(user)}, nil
}
