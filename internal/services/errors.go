package services

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when a user acts on a post they did not write.
var ErrForbidden = errors.New("forbidden")

// ErrMediaNotFound is returned when an image cannot be served.
var ErrMediaNotFound = errors.New("media not found")

// ValidationError reports a required form field that was left empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// ConflictError reports a registration for a username that is already taken.
type ConflictError struct {
	Username string
}

func (e *ConflictError) Error() string {
	return "user already registered"
}

// AuthError reports a failed credential check. Reason says which half of the
// credentials was wrong.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return e.Reason
}

const (
	reasonUnknownUsername = "incorrect username"
	reasonBadPassword     = "incorrect password"
)
