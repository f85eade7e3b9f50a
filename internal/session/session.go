// Package session keeps per-visitor state in a signed cookie. Nothing is
// stored server-side: the cookie value is an HS256 token whose claims carry
// the logged-in user's id and any pending flash messages.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultCookieName = "session"
	DefaultTTL        = 31 * 24 * time.Hour
)

// Session is the decoded cookie payload for one request.
type Session struct {
	userID  int
	flashes []string
}

// UserID returns the logged-in user's id, if any.
func (s *Session) UserID() (int, bool) {
	return s.userID, s.userID > 0
}

func (s *Session) SetUserID(id int) {
	s.userID = id
}

// Clear drops everything, including unread flashes.
func (s *Session) Clear() {
	s.userID = 0
	s.flashes = nil
}

func (s *Session) AddFlash(msg string) {
	s.flashes = append(s.flashes, msg)
}

// PopFlashes returns pending flash messages and forgets them.
func (s *Session) PopFlashes() []string {
	flashes := s.flashes
	s.flashes = nil
	return flashes
}

func (s *Session) empty() bool {
	return s.userID == 0 && len(s.flashes) == 0
}

type claims struct {
	UserID  int      `json:"user_id,omitempty"`
	Flashes []string `json:"flashes,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session cookies.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

// Options configures a Manager. Zero values fall back to the defaults.
type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func NewManager(secret string, opts Options) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Manager{
		secret:     []byte(secret),
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		secure:     opts.Secure,
		now:        time.Now,
	}, nil
}

// Load decodes the request's session cookie. A missing, tampered or expired
// cookie yields an empty session.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	var c claims
	_, err = jwt.ParseWithClaims(cookie.Value, &c, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return &Session{}
	}
	return &Session{userID: c.UserID, flashes: c.Flashes}
}

// Save writes s back as a signed cookie. An empty session removes the cookie.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	if s == nil || s.empty() {
		http.SetCookie(w, m.cookie("", -1))
		return nil
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:  s.userID,
		Flashes: s.flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(signed, int(m.ttl.Seconds())))
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type contextKey struct{}

// Middleware loads the session once per request and stores it in the
// request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithSession(r.Context(), m.Load(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// From returns the request's session. Outside Middleware it returns a fresh
// empty session.
func From(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok && s != nil {
		return s
	}
	return &Session{}
}
