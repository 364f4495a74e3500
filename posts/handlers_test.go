package posts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/posts"
	"github.com/user/inkwell-go/users"
)

type postAPI struct {
	router *chi.Mux
	tokens *auth.TokenService
	users  *users.MemoryStore
}

func newPostAPI(t *testing.T) *postAPI {
	t.Helper()

	userStore := users.NewMemoryStore()
	tokens := auth.NewTokenService(config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenDuration: time.Hour,
	})

	svc := posts.NewService(posts.NewMemoryStore(), userStore)
	handlers := posts.NewHandlers(svc)
	requireAuth := auth.Middleware(tokens, userStore)

	r := chi.NewRouter()
	r.Route("/api/posts", func(r chi.Router) {
		handlers.RegisterRoutes(r, requireAuth)
	})

	return &postAPI{router: r, tokens: tokens, users: userStore}
}

func (a *postAPI) register(t *testing.T, username string) (*auth.User, string) {
	t.Helper()
	user := &auth.User{Username: username, Email: username + "@example.com", HashedPassword: "x"}
	require.NoError(t, a.users.Insert(context.Background(), user))
	token, err := a.tokens.Issue(user.ID.Hex())
	require.NoError(t, err)
	return user, token
}

func (a *postAPI) do(t *testing.T, method, path, token string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	if out != nil && rec.Code < 400 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func validFields() posts.PostFields {
	return posts.PostFields{
		Title:   "a title",
		Content: "some content",
		Excerpt: "an excerpt",
		Image:   "https://example.com/cover.png",
	}
}

func TestPostEndpoints(t *testing.T) {
	api := newPostAPI(t)
	_, aliceToken := api.register(t, "alice")
	bob, bobToken := api.register(t, "bob")

	var created posts.PostView

	t.Run("create requires auth", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/posts", "", validFields(), nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/posts", aliceToken, validFields(), &created)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "alice", created.Author.Username)
	})

	t.Run("create missing fields", func(t *testing.T) {
		fields := validFields()
		fields.Title = ""
		rec := api.do(t, http.MethodPost, "/api/posts", aliceToken, fields, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list is public", func(t *testing.T) {
		var views []posts.PostView
		rec := api.do(t, http.MethodGet, "/api/posts", "", nil, &views)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, views, 1)
		assert.Equal(t, created.ID, views[0].ID)
	})

	t.Run("get is public", func(t *testing.T) {
		var view posts.PostView
		rec := api.do(t, http.MethodGet, "/api/posts/"+created.ID, "", nil, &view)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.Title, view.Title)
	})

	t.Run("get malformed id is not found", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/posts/not-an-id", "", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update by non-author is forbidden", func(t *testing.T) {
		rec := api.do(t, http.MethodPut, "/api/posts/"+created.ID, bobToken, validFields(), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("update by author", func(t *testing.T) {
		fields := validFields()
		fields.Title = "renamed"
		var view posts.PostView
		rec := api.do(t, http.MethodPut, "/api/posts/"+created.ID, aliceToken, fields, &view)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "renamed", view.Title)
	})

	t.Run("toggle like", func(t *testing.T) {
		var view posts.PostView
		rec := api.do(t, http.MethodPost, "/api/posts/"+created.ID+"/like", bobToken, nil, &view)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{bob.ID.Hex()}, view.Likes)

		rec = api.do(t, http.MethodPost, "/api/posts/"+created.ID+"/like", bobToken, nil, &view)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, view.Likes)
	})

	t.Run("add comment", func(t *testing.T) {
		var view posts.PostView
		rec := api.do(t, http.MethodPost, "/api/posts/"+created.ID+"/comments", bobToken,
			posts.CommentRequest{Content: "great read"}, &view)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, view.Comments, 1)
		assert.Equal(t, "bob", view.Comments[0].User.Username)
	})

	t.Run("add empty comment", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/posts/"+created.ID+"/comments", bobToken,
			posts.CommentRequest{Content: "  "}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete by non-author is forbidden", func(t *testing.T) {
		rec := api.do(t, http.MethodDelete, "/api/posts/"+created.ID, bobToken, nil, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete by author", func(t *testing.T) {
		var resp posts.DeleteResponse
		rec := api.do(t, http.MethodDelete, "/api/posts/"+created.ID, aliceToken, nil, &resp)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "post deleted", resp.Message)

		rec = api.do(t, http.MethodGet, "/api/posts/"+created.ID, "", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
