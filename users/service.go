package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
)

// Service provides user profile operations on top of a Store.
type Service struct {
	store Store
}

// NewService creates a new user Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetProfile retrieves a user's current record by id.
func (s *Service) GetProfile(ctx context.Context, id primitive.ObjectID) (*auth.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return user, nil
}

// UpdateProfile updates the identity's username and/or bio. A username that
// collides with a different existing user fails with a conflict; a username
// change regenerates the avatar reference.
func (s *Service) UpdateProfile(ctx context.Context, identity *auth.User, req UpdateProfileRequest) (*auth.User, error) {
	if req.Username == nil && req.Bio == nil {
		return nil, apperror.NewBadRequestError("no fields provided for update", nil)
	}

	update := ProfileUpdate{Bio: req.Bio}
	if req.Username != nil && *req.Username != identity.Username {
		if *req.Username == "" {
			return nil, apperror.NewValidationError("username must not be empty", nil)
		}
		other, err := s.store.FindByUsername(ctx, *req.Username)
		if err != nil && !errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperror.NewDatabaseError("failed to check username", err)
		}
		if other != nil && other.ID != identity.ID {
			return nil, apperror.NewConflictError("username already exists", nil)
		}

		avatar := auth.GeneratedAvatarURL(*req.Username)
		update.Username = req.Username
		update.Avatar = &avatar
	}

	updated, err := s.store.UpdateProfile(ctx, identity.ID, update)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			return nil, apperror.NewNotFoundError("user not found", nil)
		case errors.Is(err, auth.ErrDuplicateUser):
			// Lost the race against a concurrent registration or rename.
			return nil, apperror.NewConflictError("username already exists", nil)
		default:
			return nil, apperror.NewDatabaseError("failed to update user profile", err)
		}
	}
	return updated, nil
}

// UpdateAvatar points the identity's avatar at an uploaded file path.
func (s *Service) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarPath string) (*auth.User, error) {
	updated, err := s.store.UpdateProfile(ctx, id, ProfileUpdate{Avatar: &avatarPath})
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, apperror.NewNotFoundError("user not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to update avatar", err)
	}
	return updated, nil
}
