package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/portfolio-site/portfolio/internal/store"
	"github.com/portfolio-site/portfolio/types"
)

type fakeUserRepo struct {
	users  map[string]types.User
	nextID int
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]types.User{}, nextID: 1}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	if f.err != nil {
		return types.User{}, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	if f.err != nil {
		return types.User{}, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	if f.err != nil {
		return types.User{}, f.err
	}
	if _, ok := f.users[user.Username]; ok {
		return types.User{}, store.ErrDuplicate
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.Username] = user
	return user, nil
}

type fakePostRepo struct {
	posts  map[int]types.Post
	nextID int
	err    error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int]types.Post{}, nextID: 1}
}

func (f *fakePostRepo) List(context.Context) ([]types.Post, error) {
	posts := make([]types.Post, 0, len(f.posts))
	for _, p := range f.posts {
		posts = append(posts, p)
	}
	return posts, f.err
}

func (f *fakePostRepo) Get(_ context.Context, id int) (types.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakePostRepo) Create(_ context.Context, post types.Post) (types.Post, error) {
	if f.err != nil {
		return types.Post{}, f.err
	}
	post.ID = f.nextID
	f.nextID++
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostRepo) Update(_ context.Context, post types.Post) (types.Post, error) {
	if f.err != nil {
		return types.Post{}, f.err
	}
	if _, ok := f.posts[post.ID]; !ok {
		return types.Post{}, store.ErrNotFound
	}
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostRepo) Delete(_ context.Context, id int) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

type fakeMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string][]byte{}}
}

func (f *fakeMedia) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeMedia) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeMedia) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

type published struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type fakeBroker struct {
	messages []published
	err      error
}

func (f *fakeBroker) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.messages = append(f.messages, published{channel: channel, data: data, attrs: attrs})
	return "msg-1", nil
}
