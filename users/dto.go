// Data Transfer Objects for the user profile endpoints.
package users

import "github.com/user/inkwell-go/auth"

// UpdateProfileRequest represents a partial profile update. Pointer fields
// distinguish "leave untouched" (nil) from "set to this value".
type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty" example:"alice"`
	Bio      *string `json:"bio,omitempty" example:"Occasional writer."`
}

// ProfileResponse wraps the user record for the profile endpoints; the
// credential hash is excluded by the model's JSON tags.
type ProfileResponse struct {
	User *auth.User `json:"user"`
}
