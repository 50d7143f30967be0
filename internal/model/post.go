package model

import "time"

// Post is a blog entry. Owner is the author's first name, resolved on read.
type Post struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"-"`
	Owner      string    `json:"owner"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	ImagePath  *string   `json:"image"`
	Tags       []Tag     `json:"tags"`
	CommentIDs []string  `json:"comments"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Comment belongs to a post. Replies are one level deep: a comment with a
// parent cannot itself be replied to.
type Comment struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"-"`
	Owner           string    `json:"owner"`
	PostID          string    `json:"post"`
	ParentCommentID *string   `json:"parent_comment"`
	Body            string    `json:"body"`
	Replies         []Comment `json:"replies"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// Tag labels posts for filtering.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
