package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/users"
)

type profileAPI struct {
	router    *chi.Mux
	store     *users.MemoryStore
	tokens    *auth.TokenService
	uploadDir string
}

func newProfileAPI(t *testing.T) *profileAPI {
	t.Helper()

	store := users.NewMemoryStore()
	tokens := auth.NewTokenService(config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenDuration: time.Hour,
	})
	uploadDir := t.TempDir()

	handlers := users.NewHandlers(users.NewService(store), uploadDir)
	requireAuth := auth.Middleware(tokens, store)

	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", handlers.HandleGetProfile())
			r.Put("/profile", handlers.HandleUpdateProfile())
			r.Put("/avatar", handlers.HandleUpdateAvatar())
		})
	})

	return &profileAPI{router: r, store: store, tokens: tokens, uploadDir: uploadDir}
}

func (a *profileAPI) register(t *testing.T, username string) (*auth.User, string) {
	t.Helper()
	user := &auth.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "x",
		Avatar:         auth.GeneratedAvatarURL(username),
	}
	require.NoError(t, a.store.Insert(context.Background(), user))
	token, err := a.tokens.Issue(user.ID.Hex())
	require.NoError(t, err)
	return user, token
}

func TestGetProfileEndpoint(t *testing.T) {
	api := newProfileAPI(t)
	_, token := api.register(t, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp users.ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.User.Username)
	// The password hash never crosses the wire.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUpdateProfileEndpoint(t *testing.T) {
	api := newProfileAPI(t)
	_, token := api.register(t, "alice")
	api.register(t, "bob")

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/users/profile", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("update bio", func(t *testing.T) {
		rec := send(`{"bio":"hello"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp users.ProfileResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "hello", resp.User.Bio)
	})

	t.Run("taken username", func(t *testing.T) {
		rec := send(`{"username":"bob"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		rec := send(`{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateAvatarEndpoint(t *testing.T) {
	api := newProfileAPI(t)
	_, token := api.register(t, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/users/avatar", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp users.ProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.User.Avatar, "/uploads/"))
	assert.True(t, strings.HasSuffix(resp.User.Avatar, ".png"))

	// The file exists on disk with the uploaded content.
	stored := filepath.Join(api.uploadDir, strings.TrimPrefix(resp.User.Avatar, "/uploads/"))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "fake-png-bytes", string(data))
}

func TestUpdateAvatarMissingFile(t *testing.T) {
	api := newProfileAPI(t)
	_, token := api.register(t, "alice")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("unrelated", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/users/avatar", &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
