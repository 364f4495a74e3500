// Data Transfer Objects for the post endpoints. Author references are
// resolved into display fields before leaving the service layer.
package posts

import "time"

// PostFields carries the four mutable content fields. The full set must be
// supplied on every create and update; partial updates are rejected.
type PostFields struct {
	Title   string `json:"title" example:"On writing"`
	Content string `json:"content" example:"Full article body..."`
	Excerpt string `json:"excerpt" example:"A short teaser."`
	Image   string `json:"image" example:"/uploads/cover.png"`
}

// CommentRequest is the payload for appending a comment.
type CommentRequest struct {
	Content string `json:"content" example:"Great read!"`
}

// AuthorInfo is the resolved display projection of a referenced user.
type AuthorInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	ID        string     `json:"id"`
	User      AuthorInfo `json:"user"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
}

// PostView is the client-facing shape of a post: author and comment authors
// resolved, likes as user id strings.
type PostView struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Excerpt   string        `json:"excerpt"`
	Image     string        `json:"image"`
	Author    AuthorInfo    `json:"author"`
	Likes     []string      `json:"likes"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// DeleteResponse confirms a post removal.
type DeleteResponse struct {
	Message string `json:"message" example:"post deleted"`
}
