package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/portfolio-site/portfolio/internal/db"
	"github.com/portfolio-site/portfolio/types"
)

// UserRepository handles persistence for users. Queries run on the request's
// scoped connection when the context carries one.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT id, username, password, created_at
		FROM users
		WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT id, username, password, created_at
		FROM users
		WHERE username = $1`
	return r.getOne(ctx, query, username)
}

// Create inserts user and returns it with its assigned ID. A username that
// is already taken yields ErrDuplicate and leaves the existing row untouched.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	q, err := db.Querier(ctx, r.db)
	if err != nil {
		return types.User{}, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO users (username, password, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := q.QueryRowContext(ctx, query, user.Username, user.PasswordHash, user.CreatedAt).Scan(&user.ID); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (types.User, error) {
	q, err := db.Querier(ctx, r.db)
	if err != nil {
		return types.User{}, fmt.Errorf("db error: %w", err)
	}

	var user types.User
	err = q.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
