package services

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/internal/storage"
	"github.com/portfolio-site/portfolio/types"
)

const mediaPrefix = "posts/"

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	List(ctx context.Context) ([]types.Post, error)
	Get(ctx context.Context, id int) (types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// MediaStore is the object storage used for post images. *storage.Storage
// satisfies it.
type MediaStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Upload is an image submitted with a post form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title string
	Body  string
	Image *Upload
}

// PostService encapsulates blog use-cases.
type PostService struct {
	repo   PostRepository
	media  MediaStore
	events *EventPublisher
	logger logging.Logger
}

// NewPostService builds a PostService. media may be nil, in which case image
// uploads are ignored.
func NewPostService(repo PostRepository, media MediaStore, events *EventPublisher, logger logging.Logger) *PostService {
	return &PostService{
		repo:   repo,
		media:  media,
		events: events,
		logger: logger,
	}
}

// MediaEnabled reports whether images can be stored.
func (s *PostService) MediaEnabled() bool {
	return s.media != nil
}

func (s *PostService) List(ctx context.Context) ([]types.Post, error) {
	return s.repo.List(ctx)
}

// GetOwned loads a post for editing. It fails with store.ErrNotFound when the
// post does not exist and ErrForbidden when author did not write it.
func (s *PostService) GetOwned(ctx context.Context, id int, author types.User) (types.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Post{}, err
	}
	if post.AuthorID != author.ID {
		return types.Post{}, ErrForbidden
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, author types.User, in PostInput) (types.Post, error) {
	if in.Title == "" {
		return types.Post{}, &ValidationError{Field: "title"}
	}

	post := types.Post{
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Title:          in.Title,
		Body:           in.Body,
	}

	key, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return types.Post{}, err
	}
	post.ImageKey = key

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		s.removeImage(ctx, key)
		return types.Post{}, err
	}

	s.events.Publish(ctx, types.Event{
		Type:       types.EventPostCreated,
		UserID:     author.ID,
		Username:   author.Username,
		PostID:     created.ID,
		OccurredAt: time.Now().UTC(),
	})
	return created, nil
}

// Update rewrites a post owned by author. A new image replaces the old one.
func (s *PostService) Update(ctx context.Context, id int, author types.User, in PostInput) (types.Post, error) {
	post, err := s.GetOwned(ctx, id, author)
	if err != nil {
		return types.Post{}, err
	}
	if in.Title == "" {
		return types.Post{}, &ValidationError{Field: "title"}
	}

	previousKey := post.ImageKey
	post.Title = in.Title
	post.Body = in.Body

	key, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return types.Post{}, err
	}
	if key != "" {
		post.ImageKey = key
	}

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		s.removeImage(ctx, key)
		return types.Post{}, err
	}
	if key != "" {
		s.removeImage(ctx, previousKey)
	}

	s.events.Publish(ctx, types.Event{
		Type:       types.EventPostUpdated,
		UserID:     author.ID,
		Username:   author.Username,
		PostID:     updated.ID,
		OccurredAt: time.Now().UTC(),
	})
	return updated, nil
}

// Delete removes a post owned by author along with its image.
func (s *PostService) Delete(ctx context.Context, id int, author types.User) error {
	post, err := s.GetOwned(ctx, id, author)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.removeImage(ctx, post.ImageKey)

	s.events.Publish(ctx, types.Event{
		Type:       types.EventPostDeleted,
		UserID:     author.ID,
		Username:   author.Username,
		PostID:     post.ID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// OpenImage streams a stored image. Keys outside the post media prefix are
// reported as missing.
func (s *PostService) OpenImage(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.media == nil || !strings.HasPrefix(key, mediaPrefix) {
		return nil, ErrMediaNotFound
	}
	rc, err := s.media.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrMediaNotFound
	}
	return rc, err
}

func (s *PostService) storeImage(ctx context.Context, upload *Upload) (string, error) {
	if s.media == nil || upload == nil || upload.Body == nil || upload.Size == 0 {
		return "", nil
	}

	key := mediaPrefix + uuid.NewString() + strings.ToLower(path.Ext(upload.Filename))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.media.Put(ctx, key, upload.Body, upload.Size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

func (s *PostService) removeImage(ctx context.Context, key string) {
	if s.media == nil || key == "" {
		return
	}
	if err := s.media.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "remove image", "key", key, "error", err)
	}
}
