package types

import "time"

// User represents a registered account on the site.
type User struct {
	// ID is the unique identifier of the user, assigned by the store.
	ID int `json:"id" db:"id"`

	// Username is the unique, case-sensitive login name chosen at registration.
	// It never changes after the account is created.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the salted bcrypt hash of the user's password.
	// This field is never rendered or logged.
	PasswordHash string `json:"-" db:"password"`

	// CreatedAt is the timestamp when the account was registered.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
