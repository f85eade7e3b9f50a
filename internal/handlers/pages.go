package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio-site/portfolio/internal/web"
)

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HelloWorld is the plain-text greeting at /hello.
func HelloWorld(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Hello, World!"))
}

// PagesRouter registers the informational pages.
func PagesRouter(r chi.Router, view *View) {
	r.Get("/healthz", Healthz)
	r.Get("/hello", HelloWorld)
	r.Get("/hello/", func(w http.ResponseWriter, r *http.Request) {
		view.render(w, r, http.StatusOK, "hello.html", web.Page{Title: "Hello", Data: ""})
	})
	r.Get("/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
		view.render(w, r, http.StatusOK, "hello.html", web.Page{Title: "Hello", Data: chi.URLParam(r, "name")})
	})
	r.Get("/about", func(w http.ResponseWriter, r *http.Request) {
		view.render(w, r, http.StatusOK, "about.html", web.Page{Title: "About"})
	})
}
