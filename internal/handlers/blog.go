package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio-site/portfolio/internal/services"
	"github.com/portfolio-site/portfolio/internal/session"
	"github.com/portfolio-site/portfolio/internal/store"
	"github.com/portfolio-site/portfolio/internal/web"
	"github.com/portfolio-site/portfolio/types"
)

const maxUploadSize = 10 << 20

// BlogHandler serves the post list and the author-only edit pages.
type BlogHandler struct {
	posts *services.PostService
	view  *View
}

func NewBlogHandler(posts *services.PostService, view *View) *BlogHandler {
	return &BlogHandler{posts: posts, view: view}
}

// BlogRouter registers blog routes on the given router.
func BlogRouter(r chi.Router, posts *services.PostService, view *View) {
	handler := NewBlogHandler(posts, view)

	r.Get("/", handler.Index)
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		r.Get("/create", handler.CreateForm)
		r.Post("/create", handler.Create)
		r.Get("/{id:[0-9]+}/update", handler.UpdateForm)
		r.Post("/{id:[0-9]+}/update", handler.Update)
		r.Post("/{id:[0-9]+}/delete", handler.Delete)
	})
}

// Index lists every post, newest first.
func (h *BlogHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.view.serverError(w, r, err)
		return
	}
	h.view.render(w, r, http.StatusOK, "index.html", web.Page{Data: posts})
}

func (h *BlogHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.view.render(w, r, http.StatusOK, "create.html", h.page("New Post", nil))
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, cleanup, err := readPostForm(w, r)
	if err != nil {
		h.view.errorPage(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}
	defer cleanup()

	user := CurrentUser(r.Context())
	if _, err := h.posts.Create(r.Context(), *user, in); err != nil {
		msg, ok := flashMessage(err)
		if !ok {
			h.view.serverError(w, r, err)
			return
		}
		session.From(r.Context()).AddFlash(msg)
		h.view.render(w, r, http.StatusOK, "create.html", h.page("New Post", types.Post{Title: in.Title, Body: in.Body}))
		return
	}

	h.view.redirect(w, r, "/")
}

func (h *BlogHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.ownedPost(w, r)
	if !ok {
		return
	}
	h.view.render(w, r, http.StatusOK, "update.html", h.page("Edit", post))
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.ownedPost(w, r)
	if !ok {
		return
	}

	in, cleanup, err := readPostForm(w, r)
	if err != nil {
		h.view.errorPage(w, r, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}
	defer cleanup()

	user := CurrentUser(r.Context())
	if _, err := h.posts.Update(r.Context(), post.ID, *user, in); err != nil {
		if msg, ok := flashMessage(err); ok {
			session.From(r.Context()).AddFlash(msg)
			post.Body = in.Body
			h.view.render(w, r, http.StatusOK, "update.html", h.page("Edit", post))
			return
		}
		h.postError(w, r, post.ID, err)
		return
	}

	h.view.redirect(w, r, "/")
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.ownedPost(w, r)
	if !ok {
		return
	}

	user := CurrentUser(r.Context())
	if err := h.posts.Delete(r.Context(), post.ID, *user); err != nil {
		h.postError(w, r, post.ID, err)
		return
	}

	h.view.redirect(w, r, "/")
}

// ownedPost loads the post named in the URL and checks that the current
// user wrote it. On failure the response has already been written.
func (h *BlogHandler) ownedPost(w http.ResponseWriter, r *http.Request) (types.Post, bool) {
	id, err := parseID(r)
	if err != nil {
		h.view.errorPage(w, r, http.StatusNotFound, "Post not found.")
		return types.Post{}, false
	}

	post, err := h.posts.GetOwned(r.Context(), id, *CurrentUser(r.Context()))
	if err != nil {
		h.postError(w, r, id, err)
		return types.Post{}, false
	}
	return post, true
}

func (h *BlogHandler) postError(w http.ResponseWriter, r *http.Request, id int, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.view.errorPage(w, r, http.StatusNotFound, fmt.Sprintf("Post id %d doesn't exist.", id))
	case errors.Is(err, services.ErrForbidden):
		h.view.errorPage(w, r, http.StatusForbidden, "You can only change your own posts.")
	default:
		h.view.serverError(w, r, err)
	}
}

func (h *BlogHandler) page(title string, data any) web.Page {
	return web.Page{
		Title:        title,
		MediaEnabled: h.posts.MediaEnabled(),
		Data:         data,
	}
}

// readPostForm parses a create or update form. Both urlencoded and multipart
// bodies are accepted; the image field only exists in the latter.
func readPostForm(w http.ResponseWriter, r *http.Request) (services.PostInput, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return services.PostInput{}, noop, err
	}

	in := services.PostInput{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return in, noop, nil
	}
	in.Image = uploadFrom(file, header)
	return in, func() { _ = file.Close() }, nil
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) *services.Upload {
	return &services.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}
