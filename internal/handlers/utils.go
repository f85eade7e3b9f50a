package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/internal/services"
	"github.com/portfolio-site/portfolio/internal/session"
	"github.com/portfolio-site/portfolio/internal/web"
	"github.com/portfolio-site/portfolio/types"
)

type contextKey string

const currentUserKey contextKey = "current_user"

func withCurrentUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// View bundles what every HTML handler needs to answer a request.
type View struct {
	renderer *web.Renderer
	sessions *session.Manager
	logger   logging.Logger
}

func NewView(renderer *web.Renderer, sessions *session.Manager, logger logging.Logger) *View {
	return &View{
		renderer: renderer,
		sessions: sessions,
		logger:   logger,
	}
}

// render fills in the current user and pending flashes, then writes the page.
func (v *View) render(w http.ResponseWriter, r *http.Request, status int, name string, page web.Page) {
	page.CurrentUser = CurrentUser(r.Context())

	sess := session.From(r.Context())
	page.Flashes = sess.PopFlashes()
	if len(page.Flashes) > 0 {
		if err := v.sessions.Save(w, sess); err != nil {
			v.serverError(w, r, err)
			return
		}
	}

	if err := v.renderer.Render(w, status, name, page); err != nil {
		v.logger.Error(r.Context(), "render template", "template", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// redirect saves the session and sends a 303 to url.
func (v *View) redirect(w http.ResponseWriter, r *http.Request, url string) {
	if err := v.sessions.Save(w, session.From(r.Context())); err != nil {
		v.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (v *View) errorPage(w http.ResponseWriter, r *http.Request, status int, message string) {
	v.render(w, r, status, "error.html", web.Page{
		Title: http.StatusText(status),
		Data:  message,
	})
}

func (v *View) serverError(w http.ResponseWriter, r *http.Request, err error) {
	v.logger.Error(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// flashMessage turns a recoverable service error into the text shown to the
// visitor. ok is false for errors that should fail the request.
func flashMessage(err error) (msg string, ok bool) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return capitalize(verr.Field) + " is required.", true
	}
	var cerr *services.ConflictError
	if errors.As(err, &cerr) {
		return fmt.Sprintf("User %s is already registered.", cerr.Username), true
	}
	var aerr *services.AuthError
	if errors.As(err, &aerr) {
		return capitalize(aerr.Reason) + ".", true
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
