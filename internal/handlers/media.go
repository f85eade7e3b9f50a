package handlers

import (
	"bufio"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio-site/portfolio/internal/services"
)

// Media streams post images out of object storage.
func Media(posts *services.PostService, view *View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")

		rc, err := posts.OpenImage(r.Context(), key)
		if err != nil {
			if !errors.Is(err, services.ErrMediaNotFound) {
				view.logger.Warn(r.Context(), "open image", "key", key, "error", err)
			}
			http.NotFound(w, r)
			return
		}
		defer rc.Close()

		// Some backends only report a missing object on first read.
		br := bufio.NewReaderSize(rc, 512)
		head, err := br.Peek(512)
		if err != nil && !errors.Is(err, io.EOF) {
			view.logger.Debug(r.Context(), "read image", "key", key, "error", err)
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", http.DetectContentType(head))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if _, err := io.Copy(w, br); err != nil {
			view.logger.Warn(r.Context(), "stream image", "key", key, "error", err)
		}
	}
}
