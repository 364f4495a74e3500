// HTTP handlers for profile management. All routes here sit behind the auth
// middleware, so the resolved identity is always available on the context.
package users

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
)

// maxAvatarSize bounds the multipart form memory for avatar uploads.
const maxAvatarSize = 10 << 20 // 10 MiB

// Handlers provides HTTP handlers for user profile management.
type Handlers struct {
	service   *Service
	uploadDir string
}

// NewHandlers creates new user Handlers. uploadDir is where avatar files are
// written; they are served back under /uploads/.
func NewHandlers(service *Service, uploadDir string) *Handlers {
	return &Handlers{service: service, uploadDir: uploadDir}
}

// HandleGetProfile godoc
// @Summary Get current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/users/profile [get]
func (h *Handlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("no identity on request", nil))
			return
		}

		// The middleware resolved the record moments ago; no second lookup.
		auth.WriteJSON(w, http.StatusOK, ProfileResponse{User: identity})
	}
}

// HandleUpdateProfile godoc
// @Summary Update current user's profile
// @Description Updates username and/or bio. A username change regenerates the avatar.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profileBody body users.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} users.ProfileResponse
// @Failure 400 {object} apperror.ErrorResponse "No fields, or username already exists"
// @Router /api/users/profile [put]
func (h *Handlers) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("no identity on request", nil))
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		updated, err := h.service.UpdateProfile(r.Context(), identity, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, ProfileResponse{User: updated})
	}
}

// HandleUpdateAvatar godoc
// @Summary Upload a new avatar
// @Description Accepts a multipart form with an "avatar" file field.
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.ProfileResponse
// @Failure 400 {object} apperror.ErrorResponse "Missing avatar file"
// @Router /api/users/avatar [put]
func (h *Handlers) HandleUpdateAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("no identity on request", nil))
			return
		}

		if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid multipart form", err))
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("avatar file is required", err))
			return
		}
		defer file.Close()

		avatarPath, err := h.saveUpload(file, header.Filename)
		if err != nil {
			auth.WriteError(w, r, apperror.NewInternalError("failed to store avatar", err))
			return
		}

		updated, err := h.service.UpdateAvatar(r.Context(), identity.ID, avatarPath)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, ProfileResponse{User: updated})
	}
}

// saveUpload writes the uploaded file under the upload directory with a
// random name, keeping only the original extension, and returns the public
// path it will be served from.
func (h *Handlers) saveUpload(file io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + filepath.Ext(originalName)
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
