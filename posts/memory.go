package posts

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-memory Store implementation used by tests. Mutations
// hold the lock for their whole duration, matching the single-document
// atomicity the mongo implementation provides.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]Post
}

// NewMemoryStore creates an empty in-memory post store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[primitive.ObjectID]Post)}
}

func clonePost(p Post) Post {
	out := p
	out.Likes = append([]primitive.ObjectID(nil), p.Likes...)
	out.Comments = append([]Comment(nil), p.Comments...)
	return out
}

// Insert persists a new post and fills in its generated ID.
func (s *MemoryStore) Insert(ctx context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	s.posts[post.ID] = clonePost(*post)
	return nil
}

// FindByID returns the post or ErrPostNotFound.
func (s *MemoryStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	out := clonePost(post)
	return &out, nil
}

// FindAll returns every post, newest first by creation time.
func (s *MemoryStore) FindAll(ctx context.Context) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Post, 0, len(s.posts))
	for id := range s.posts {
		result = append(result, clonePost(s.posts[id]))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// UpdateFields overwrites the four mutable fields.
func (s *MemoryStore) UpdateFields(ctx context.Context, id primitive.ObjectID, fields PostFields) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	post.Title = fields.Title
	post.Content = fields.Content
	post.Excerpt = fields.Excerpt
	post.Image = fields.Image
	post.UpdatedAt = time.Now().UTC()
	s.posts[id] = post

	out := clonePost(post)
	return &out, nil
}

// Delete removes the post; deleting an absent post is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, id)
	return nil
}

// ToggleLike flips membership of userID in the like-set under the lock.
func (s *MemoryStore) ToggleLike(ctx context.Context, id, userID primitive.ObjectID) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}

	idx := -1
	for i, like := range post.Likes {
		if like == userID {
			idx = i
			break
		}
	}
	likes := append([]primitive.ObjectID(nil), post.Likes...)
	if idx >= 0 {
		likes = append(likes[:idx], likes[idx+1:]...)
	} else {
		likes = append(likes, userID)
	}
	post.Likes = likes
	post.UpdatedAt = time.Now().UTC()
	s.posts[id] = post

	out := clonePost(post)
	return &out, nil
}

// AddComment appends a comment under the lock.
func (s *MemoryStore) AddComment(ctx context.Context, id primitive.ObjectID, comment Comment) (*Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	post.Comments = append(append([]Comment(nil), post.Comments...), comment)
	post.UpdatedAt = time.Now().UTC()
	s.posts[id] = post

	out := clonePost(post)
	return &out, nil
}
