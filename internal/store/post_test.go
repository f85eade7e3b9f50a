package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/portfolio-site/portfolio/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAuthor(t *testing.T, repo *UserRepository, username string) types.User {
	t.Helper()
	user, err := repo.Create(context.Background(), types.User{Username: username, PasswordHash: "hash"})
	require.NoError(t, err)
	return user
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	pool := newTestDB(t)
	author := seedAuthor(t, NewUserRepository(pool), "bob")
	repo := NewPostRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, types.Post{AuthorID: author.ID, Title: "Hello", Body: "first post"})
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "first post", got.Body)
	assert.Equal(t, "bob", got.AuthorUsername)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.Empty(t, got.ImageKey)
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	pool := newTestDB(t)
	users := NewUserRepository(pool)
	bob := seedAuthor(t, users, "bob")
	alice := seedAuthor(t, users, "alice")
	repo := NewPostRepository(pool)
	ctx := context.Background()

	_, err := repo.Create(ctx, types.Post{AuthorID: bob.ID, Title: "one"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, types.Post{AuthorID: alice.ID, Title: "two"})
	require.NoError(t, err)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "two", posts[0].Title)
	assert.Equal(t, "alice", posts[0].AuthorUsername)
	assert.Equal(t, "one", posts[1].Title)
	assert.Equal(t, "bob", posts[1].AuthorUsername)
}

func TestPostRepository_ListEmpty(t *testing.T) {
	posts, err := NewPostRepository(newTestDB(t)).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_Update(t *testing.T) {
	pool := newTestDB(t)
	author := seedAuthor(t, NewUserRepository(pool), "bob")
	repo := NewPostRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, types.Post{AuthorID: author.ID, Title: "draft"})
	require.NoError(t, err)

	created.Title = "final"
	created.Body = "edited"
	created.ImageKey = "posts/cover.png"
	_, err = repo.Update(ctx, created)
	require.NoError(t, err)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "edited", got.Body)
	assert.Equal(t, "posts/cover.png", got.ImageKey)
}

func TestPostRepository_MissingPost(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, types.Post{ID: 99, Title: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 99), ErrNotFound)
}

func TestPostRepository_Delete(t *testing.T) {
	pool := newTestDB(t)
	author := seedAuthor(t, NewUserRepository(pool), "bob")
	repo := NewPostRepository(pool)
	ctx := context.Background()

	created, err := repo.Create(ctx, types.Post{AuthorID: author.ID, Title: "bye"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostRepository_UnknownAuthor(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	_, err := repo.Create(context.Background(), types.Post{AuthorID: 404, Title: "orphan"})
	assert.Error(t, err)
}

func TestPostRepository_ListQueryError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	boom := errors.New("no such table: posts")
	mock.ExpectQuery(regexp.QuoteMeta("FROM posts p")).WillReturnError(boom)

	_, err = NewPostRepository(mockDB).List(context.Background())
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_DeleteExecError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	boom := errors.New("database is locked")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM posts")).
		WithArgs(3).
		WillReturnError(boom)

	err = NewPostRepository(mockDB).Delete(context.Background(), 3)
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
