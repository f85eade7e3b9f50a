package types

import "time"

// EventType names something that happened on the site.
type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventPostCreated    EventType = "post.created"
	EventPostUpdated    EventType = "post.updated"
	EventPostDeleted    EventType = "post.deleted"
)

// Event is the payload published to the message broker when site content
// changes. Subscribers receive it JSON-encoded.
type Event struct {
	// Type identifies what happened.
	Type EventType `json:"type"`

	// UserID is the acting user.
	UserID int `json:"user_id"`

	// Username is the acting user's login name.
	Username string `json:"username,omitempty"`

	// PostID is set for post events.
	PostID int `json:"post_id,omitempty"`

	// OccurredAt is when the event was produced.
	OccurredAt time.Time `json:"occurred_at"`
}
