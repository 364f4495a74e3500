// Data Transfer Objects for the auth endpoints: request payloads decoded
// from JSON bodies and the response shapes returned on success.
package auth

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// LoginRequest represents the login request payload. Login is by email only.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"strongpassword123"`
}

// UserInfo is the public projection of a user returned alongside a token.
type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio,omitempty"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// PublicInfo projects a User into its client-facing shape.
func PublicInfo(u *User) UserInfo {
	return UserInfo{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Bio:      u.Bio,
	}
}
