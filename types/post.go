package types

import "time"

// Post represents a blog entry written by a registered user.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// AuthorID references the user who wrote the post.
	AuthorID int `json:"author_id" db:"author_id"`

	// AuthorUsername is joined from the users table for display.
	AuthorUsername string `json:"author_username" db:"username"`

	// Title is the headline of the post. It is required.
	Title string `json:"title" db:"title"`

	// Body is the free-form text of the post.
	Body string `json:"body" db:"body"`

	// ImageKey is the object storage key of an optional cover image.
	// Empty when the post has no image.
	ImageKey string `json:"image_key,omitempty" db:"image_key"`

	// CreatedAt is the timestamp when the post was published.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
