package posts

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
)

// Service implements the post aggregate operations: CRUD, the like toggle,
// and comment appends, enforcing ownership on every mutation.
type Service struct {
	store Store
	users auth.UserStore
}

// NewService creates a new post Service. The user store is consulted to
// resolve author references into display fields.
func NewService(store Store, users auth.UserStore) *Service {
	return &Service{store: store, users: users}
}

// validateFields checks that the full mutable field set is present. Both
// create and update require all four fields; callers must re-supply
// unchanged values rather than send partial payloads.
func validateFields(fields PostFields) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", fields.Title},
		{"content", fields.Content},
		{"excerpt", fields.Excerpt},
		{"image", fields.Image},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperror.NewValidationError("missing required fields: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Create makes a new post authored by the identity, with an empty like-set
// and no comments.
func (s *Service) Create(ctx context.Context, identity *auth.User, fields PostFields) (*PostView, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &Post{
		Title:     fields.Title,
		Content:   fields.Content,
		Excerpt:   fields.Excerpt,
		Image:     fields.Image,
		Author:    identity.ID,
		Likes:     []primitive.ObjectID{},
		Comments:  []Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, post); err != nil {
		return nil, apperror.NewDatabaseError("failed to create post", err)
	}
	return s.view(ctx, post)
}

// List returns all posts, newest first, with authors resolved.
func (s *Service) List(ctx context.Context) ([]PostView, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list posts", err)
	}

	resolver := s.newResolver()
	views := make([]PostView, 0, len(all))
	for i := range all {
		view, err := s.viewWith(ctx, &all[i], resolver)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Get returns a single post with its author and comment authors resolved.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*PostView, error) {
	post, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "failed to get post")
	}
	return s.view(ctx, post)
}

// Update overwrites the four mutable fields. Only the author may update;
// all four fields must be supplied on every call.
func (s *Service) Update(ctx context.Context, identity *auth.User, id primitive.ObjectID, fields PostFields) (*PostView, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}
	if err := s.requireOwnership(ctx, identity, id, "modify"); err != nil {
		return nil, err
	}

	post, err := s.store.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, s.storeError(err, "failed to update post")
	}
	return s.view(ctx, post)
}

// Delete removes the post. Only the author may delete; removal is
// idempotent once ownership has been established.
func (s *Service) Delete(ctx context.Context, identity *auth.User, id primitive.ObjectID) error {
	if err := s.requireOwnership(ctx, identity, id, "delete"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return apperror.NewDatabaseError("failed to delete post", err)
	}
	return nil
}

// ToggleLike flips the identity's membership in the post's like-set and
// returns the updated post. Toggling twice restores the original state.
func (s *Service) ToggleLike(ctx context.Context, identity *auth.User, id primitive.ObjectID) (*PostView, error) {
	post, err := s.store.ToggleLike(ctx, id, identity.ID)
	if err != nil {
		return nil, s.storeError(err, "failed to toggle like")
	}
	return s.view(ctx, post)
}

// AddComment appends a comment authored by the identity and returns the
// full updated post.
func (s *Service) AddComment(ctx context.Context, identity *auth.User, id primitive.ObjectID, req CommentRequest) (*PostView, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperror.NewValidationError("comment content must not be empty", nil)
	}

	comment := Comment{
		ID:        primitive.NewObjectID(),
		User:      identity.ID,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
	}
	post, err := s.store.AddComment(ctx, id, comment)
	if err != nil {
		return nil, s.storeError(err, "failed to add comment")
	}
	return s.view(ctx, post)
}

// requireOwnership loads the post and rejects with not-found or forbidden.
// Violations are surfaced, never silently ignored.
func (s *Service) requireOwnership(ctx context.Context, identity *auth.User, id primitive.ObjectID, verb string) error {
	post, err := s.store.FindByID(ctx, id)
	if err != nil {
		return s.storeError(err, "failed to get post")
	}
	if post.Author != identity.ID {
		return apperror.NewForbiddenError("you do not have permission to "+verb+" this post", nil)
	}
	return nil
}

func (s *Service) storeError(err error, message string) error {
	if errors.Is(err, ErrPostNotFound) {
		return apperror.NewNotFoundError("post not found", nil)
	}
	return apperror.NewDatabaseError(message, err)
}

// newResolver returns a memoizing author lookup so a listing resolves each
// distinct user once.
func (s *Service) newResolver() map[primitive.ObjectID]AuthorInfo {
	return make(map[primitive.ObjectID]AuthorInfo)
}

func (s *Service) resolveAuthor(ctx context.Context, id primitive.ObjectID, cache map[primitive.ObjectID]AuthorInfo) (AuthorInfo, error) {
	if info, ok := cache[id]; ok {
		return info, nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// Referenced user no longer resolvable; keep the id so the
			// aggregate still renders.
			info := AuthorInfo{ID: id.Hex()}
			cache[id] = info
			return info, nil
		}
		return AuthorInfo{}, apperror.NewDatabaseError("failed to resolve author", err)
	}

	info := AuthorInfo{ID: user.ID.Hex(), Username: user.Username, Avatar: user.Avatar}
	cache[id] = info
	return info, nil
}

func (s *Service) view(ctx context.Context, post *Post) (*PostView, error) {
	return s.viewWith(ctx, post, s.newResolver())
}

// viewWith projects a Post into its client-facing shape, resolving the
// author and every comment author through the shared cache.
func (s *Service) viewWith(ctx context.Context, post *Post, cache map[primitive.ObjectID]AuthorInfo) (*PostView, error) {
	author, err := s.resolveAuthor(ctx, post.Author, cache)
	if err != nil {
		return nil, err
	}

	likes := make([]string, 0, len(post.Likes))
	for _, like := range post.Likes {
		likes = append(likes, like.Hex())
	}

	comments := make([]CommentView, 0, len(post.Comments))
	for _, c := range post.Comments {
		commenter, err := s.resolveAuthor(ctx, c.User, cache)
		if err != nil {
			return nil, err
		}
		comments = append(comments, CommentView{
			ID:        c.ID.Hex(),
			User:      commenter,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}

	return &PostView{
		ID:        post.ID.Hex(),
		Title:     post.Title,
		Content:   post.Content,
		Excerpt:   post.Excerpt,
		Image:     post.Image,
		Author:    author,
		Likes:     likes,
		Comments:  comments,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}, nil
}
