package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/internal/session"
	"github.com/portfolio-site/portfolio/internal/store"
	"github.com/portfolio-site/portfolio/types"
)

const loginPath = "/auth/login"

// UserLookup resolves a session's user id. *services.UserService satisfies it.
type UserLookup interface {
	GetByID(ctx context.Context, id int) (types.User, error)
}

// LoadCurrentUser resolves the session's user before any route runs. A
// session without a user id, or pointing at a user that no longer exists,
// leaves the request anonymous. Any other lookup failure aborts with 500.
func LoadCurrentUser(users UserLookup, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var current *types.User

			if id, ok := session.From(r.Context()).UserID(); ok {
				user, err := users.GetByID(r.Context(), id)
				switch {
				case err == nil:
					current = &user
				case errors.Is(err, store.ErrNotFound):
				default:
					logger.Error(r.Context(), "load current user", "user_id", id, "error", err)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(withCurrentUser(r.Context(), current)))
		})
	}
}

// CurrentUser returns the logged-in user, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *types.User {
	user, _ := ctx.Value(currentUserKey).(*types.User)
	return user
}

// RequireAuth redirects anonymous visitors to the login page instead of
// running next.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
