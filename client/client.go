package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/inkwell-go/apperror"
	"github.com/user/inkwell-go/auth"
	"github.com/user/inkwell-go/posts"
	"github.com/user/inkwell-go/users"
)

// Client is an HTTP client for the inkwell API. Authenticated calls attach
// the bearer token from the injected Session; register and login persist a
// fresh session, Logout clears it.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New creates a Client for the given base URL (e.g. http://localhost:5000)
// using the provided session store.
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
}

// APIError is a non-2xx response decoded from the server's {message} body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// do executes one request. When authed is set, the session token is attached;
// an expired or missing session fails before any network call.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, authed bool, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := c.session.Token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp apperror.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Message == "" {
			errResp.Message = http.StatusText(resp.StatusCode)
		}
		// An expired or revoked-identity token means the persisted session
		// is stale; tear it down so the next call starts clean.
		if resp.StatusCode == http.StatusUnauthorized && authed {
			_ = c.session.Clear()
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Register creates an account and persists the returned session.
func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	var resp auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/register", req, false, &resp); err != nil {
		return nil, err
	}
	if err := c.session.Save(resp.Token, resp.User); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and persists the returned session.
func (c *Client) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	var resp auth.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/login", req, false, &resp); err != nil {
		return nil, err
	}
	if err := c.session.Save(resp.Token, resp.User); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout clears the local session. The token itself stays valid until its
// natural expiry; the server keeps no revocation list.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Profile fetches the current user's profile.
func (c *Client) Profile(ctx context.Context) (*users.ProfileResponse, error) {
	var resp users.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile updates username and/or bio.
func (c *Client) UpdateProfile(ctx context.Context, req users.UpdateProfileRequest) (*users.ProfileResponse, error) {
	var resp users.ProfileResponse
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", req, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Posts lists all posts, newest first.
func (c *Client) Posts(ctx context.Context) ([]posts.PostView, error) {
	var resp []posts.PostView
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, false, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Post fetches a single post.
func (c *Client) Post(ctx context.Context, id string) (*posts.PostView, error) {
	var resp posts.PostView
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+id, nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreatePost creates a new post authored by the session user.
func (c *Client) CreatePost(ctx context.Context, fields posts.PostFields) (*posts.PostView, error) {
	var resp posts.PostView
	if err := c.do(ctx, http.MethodPost, "/api/posts", fields, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePost overwrites a post's mutable fields; the full set is required.
func (c *Client) UpdatePost(ctx context.Context, id string, fields posts.PostFields) (*posts.PostView, error) {
	var resp posts.PostView
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+id, fields, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePost removes a post owned by the session user.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+id, nil, true, nil)
}

// ToggleLike flips the session user's like on a post.
func (c *Client) ToggleLike(ctx context.Context, id string) (*posts.PostView, error) {
	var resp posts.PostView
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+id+"/like", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddComment appends a comment to a post.
func (c *Client) AddComment(ctx context.Context, id, content string) (*posts.PostView, error) {
	var resp posts.PostView
	req := posts.CommentRequest{Content: content}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+id+"/comments", req, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
