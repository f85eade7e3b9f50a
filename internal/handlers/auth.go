package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio-site/portfolio/internal/services"
	"github.com/portfolio-site/portfolio/internal/session"
	"github.com/portfolio-site/portfolio/internal/web"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	users *services.UserService
	view  *View
}

func NewAuthHandler(users *services.UserService, view *View) *AuthHandler {
	return &AuthHandler{users: users, view: view}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, users *services.UserService, view *View) {
	handler := NewAuthHandler(users, view)

	r.Get("/register", handler.RegisterForm)
	r.Post("/register", handler.Register)
	r.Get("/login", handler.LoginForm)
	r.Post("/login", handler.Login)
	r.Get("/logout", handler.Logout)
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.view.render(w, r, http.StatusOK, "register.html", web.Page{Title: "Register", Data: ""})
}

// Register creates an account and sends the visitor to the login page.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if _, err := h.users.Register(r.Context(), username, password); err != nil {
		msg, ok := flashMessage(err)
		if !ok {
			h.view.serverError(w, r, err)
			return
		}
		session.From(r.Context()).AddFlash(msg)
		h.view.render(w, r, http.StatusOK, "register.html", web.Page{Title: "Register", Data: username})
		return
	}

	h.view.redirect(w, r, loginPath)
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.view.render(w, r, http.StatusOK, "login.html", web.Page{Title: "Log In", Data: ""})
}

// Login verifies credentials and starts a fresh session holding only the
// user's id.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.users.Verify(r.Context(), username, password)
	if err != nil {
		msg, ok := flashMessage(err)
		if !ok {
			h.view.serverError(w, r, err)
			return
		}
		session.From(r.Context()).AddFlash(msg)
		h.view.render(w, r, http.StatusOK, "login.html", web.Page{Title: "Log In", Data: username})
		return
	}

	sess := session.From(r.Context())
	sess.Clear()
	sess.SetUserID(user.ID)
	h.view.redirect(w, r, "/")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session.From(r.Context()).Clear()
	h.view.redirect(w, r, "/")
}
