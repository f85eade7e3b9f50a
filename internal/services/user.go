package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/portfolio-site/portfolio/internal/store"
	"github.com/portfolio-site/portfolio/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates registration and credential checks.
type UserService struct {
	repo     UserRepository
	events   *EventPublisher
	hashCost int
}

func NewUserService(repo UserRepository, events *EventPublisher) *UserService {
	return &UserService{
		repo:     repo,
		events:   events,
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register validates the credentials, hashes the password and stores a new
// user. A taken username yields *ConflictError.
func (s *UserService) Register(ctx context.Context, username, password string) (types.User, error) {
	if username == "" {
		return types.User{}, &ValidationError{Field: "username"}
	}
	if password == "" {
		return types.User{}, &ValidationError{Field: "password"}
	}

	hashed, err := bcrypt.GenerateFromPassword(passwordDigest(password), s.hashCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     username,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, &ConflictError{Username: username}
		}
		return types.User{}, err
	}

	s.events.Publish(ctx, types.Event{
		Type:       types.EventUserRegistered,
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: time.Now().UTC(),
	})
	return user, nil
}

// Verify checks a username and password pair and returns the matching user.
func (s *UserService) Verify(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, &AuthError{Reason: reasonUnknownUsername}
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordDigest(password)); err != nil {
		return types.User{}, &AuthError{Reason: reasonBadPassword}
	}
	return user, nil
}

// passwordDigest condenses a password of any length into 44 bytes, below
// bcrypt's 72-byte input limit.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	digest := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(digest, sum[:])
	return digest
}
