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

// PostRepository handles persistence for blog posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `p.id, p.author_id, u.username, p.title, p.body, p.image_key, p.created_at`

// List returns every post, newest first, with the author's username.
func (r *PostRepository) List(ctx context.Context) ([]types.Post, error) {
	q, err := db.Querier(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON p.author_id = u.id
		ORDER BY p.created_at DESC, p.id DESC`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		var post types.Post
		if err := scanPost(rows, &post); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	q, err := db.Querier(ctx, r.db)
	if err != nil {
		return types.Post{}, fmt.Errorf("db error: %w", err)
	}

	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.id = $1`
	var post types.Post
	if err := scanPost(q.QueryRowContext(ctx, query, id), &post); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	q, err := db.Querier(ctx, r.db)
	if err != nil {
		return types.Post{}, fmt.Errorf("db error: %w", err)
	}

	post.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO posts (author_id, title, body, image_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := q.QueryRowContext(ctx, query,
		post.AuthorID,
		post.Title,
		post.Body,
		post.ImageKey,
		post.CreatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, fmt.Errorf("db error: %w", err)
	}
	return post, nil
}

// Update rewrites the title, body and image of an existing post.
func (r *PostRepository) Update(ctx context.Context, post types.Post) (types.Post, error) {
	q, err := db.Querier(ctx, r.db)
	if err != nil {
		return types.Post{}, fmt.Errorf("db error: %w", err)
	}

	const query = `
		UPDATE posts
		SET title = $1,
			body = $2,
			image_key = $3
		WHERE id = $4`
	result, err := q.ExecContext(ctx, query, post.Title, post.Body, post.ImageKey, post.ID)
	if err != nil {
		return types.Post{}, fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Post{}, fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return types.Post{}, ErrNotFound
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	q, err := db.Querier(ctx, r.db)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	const query = `DELETE FROM posts WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner, post *types.Post) error {
	return row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.AuthorUsername,
		&post.Title,
		&post.Body,
		&post.ImageKey,
		&post.CreatedAt,
	)
}
