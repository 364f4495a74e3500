// HTTP handlers for the post endpoints. Reads are public; every mutation
// sits behind the auth middleware.
package posts

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
)

// Handlers wraps the post Service to provide HTTP handlers.
type Handlers struct {
	service *Service
}

// NewHandlers creates new post Handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// postID parses the {id} route parameter. A syntactically invalid id can
// never reference a post, so it reports not-found rather than a parse error.
func postID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apperror.NewNotFoundError("post not found", nil)
	}
	return id, nil
}

func identityOrFail(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("no identity on request", nil))
		return nil, false
	}
	return identity, true
}

// HandleList godoc
// @Summary List all posts
// @Description Returns all posts, newest first, with authors resolved.
// @Tags posts
// @Produce json
// @Success 200 {array} posts.PostView
// @Router /api/posts [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views, err := h.service.List(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, views)
	}
}

// HandleGet godoc
// @Summary Get a single post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} posts.PostView
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/posts/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := postID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		view, err := h.service.Get(r.Context(), id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, view)
	}
}

// HandleCreate godoc
// @Summary Create a post
// @Description Requires all of title, content, excerpt and image.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postBody body posts.PostFields true "Post fields"
// @Success 201 {object} posts.PostView
// @Failure 400 {object} apperror.ErrorResponse "Missing required fields"
// @Router /api/posts [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r)
		if !ok {
			return
		}

		var fields PostFields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		view, err := h.service.Create(r.Context(), identity, fields)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusCreated, view)
	}
}

// HandleUpdate godoc
// @Summary Update a post
// @Description Author only. The full field set must be supplied every time.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param postBody body posts.PostFields true "Post fields"
// @Success 200 {object} posts.PostView
// @Failure 403 {object} apperror.ErrorResponse "Not the author"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/posts/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r)
		if !ok {
			return
		}

		id, err := postID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var fields PostFields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		view, err := h.service.Update(r.Context(), identity, id, fields)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, view)
	}
}

// HandleDelete godoc
// @Summary Delete a post
// @Description Author only.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} posts.DeleteResponse
// @Failure 403 {object} apperror.ErrorResponse "Not the author"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/posts/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r)
		if !ok {
			return
		}

		id, err := postID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		if err := h.service.Delete(r.Context(), identity, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, DeleteResponse{Message: "post deleted"})
	}
}

// HandleToggleLike godoc
// @Summary Toggle a like
// @Description Adds the caller to the like-set if absent, removes otherwise.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} posts.PostView
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/posts/{id}/like [post]
func (h *Handlers) HandleToggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r)
		if !ok {
			return
		}

		id, err := postID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		view, err := h.service.ToggleLike(r.Context(), identity, id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, view)
	}
}

// HandleAddComment godoc
// @Summary Append a comment
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentBody body posts.CommentRequest true "Comment content"
// @Success 200 {object} posts.PostView
// @Failure 400 {object} apperror.ErrorResponse "Empty content"
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/posts/{id}/comments [post]
func (h *Handlers) HandleAddComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityOrFail(w, r)
		if !ok {
			return
		}

		id, err := postID(r)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req CommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		view, err := h.service.AddComment(r.Context(), identity, id, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, view)
	}
}

// RegisterRoutes mounts the post routes on the given router. Public reads
// are registered directly; mutations are grouped behind the provided
// authentication middleware.
func (h *Handlers) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", h.HandleList())
	r.Get("/{id}", h.HandleGet())

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.HandleCreate())
		r.Put("/{id}", h.HandleUpdate())
		r.Delete("/{id}", h.HandleDelete())
		r.Post("/{id}/like", h.HandleToggleLike())
		r.Post("/{id}/comments", h.HandleAddComment())
	})
}
