package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/portfolio-site/portfolio/config"
	"github.com/portfolio-site/portfolio/internal/db"
	"github.com/portfolio-site/portfolio/internal/handlers"
	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/internal/mq"
	"github.com/portfolio-site/portfolio/internal/services"
	"github.com/portfolio-site/portfolio/internal/session"
	"github.com/portfolio-site/portfolio/internal/storage"
	"github.com/portfolio-site/portfolio/internal/store"
	"github.com/portfolio-site/portfolio/internal/web"
)

// requestTimeout bounds a handler. The server's write deadline sits a little
// past it so the timeout response still reaches the client.
const (
	requestTimeout = 30 * time.Second
	writeTimeout   = requestTimeout + 5*time.Second
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	objects    *storage.Storage
	broker     *mq.MQ
	logger     logging.Logger
}

// New constructs a Server with basic middleware and defaults. The schema is
// not created here; run init-db or migrate up first.
func New(ctx context.Context, cfg config.Config, logger logging.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	srv := &Server{db: dbConn, logger: logger}
	fail := func(err error) (*Server, error) {
		_ = srv.close()
		return nil, err
	}

	var media services.MediaStore
	srv.objects, err = storage.New(ctx, cfg.Storage)
	if err != nil {
		return fail(fmt.Errorf("storage: %w", err))
	}
	if srv.objects != nil {
		media = srv.objects
		logger.Info(ctx, "media storage enabled", "backend", cfg.Storage.Backend, "bucket", srv.objects.Bucket())
	}

	var events *services.EventPublisher
	srv.broker, err = mq.New(ctx, cfg.MQ)
	if err != nil {
		return fail(fmt.Errorf("mq: %w", err))
	}
	if srv.broker != nil {
		events = services.NewEventPublisher(srv.broker, cfg.MQ.Channel, logger)
		logger.Info(ctx, "event publishing enabled", "backend", cfg.MQ.Backend, "channel", cfg.MQ.Channel)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return fail(err)
	}
	sessions, err := session.NewManager(cfg.SecretKey, session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
	if err != nil {
		return fail(err)
	}
	if cfg.SecretKey == "dev" {
		logger.Warn(ctx, "using the development secret key; set SECRET_KEY in production")
	}

	userRepo := store.NewUserRepository(dbConn)
	postRepo := store.NewPostRepository(dbConn)

	userService := services.NewUserService(userRepo, events)
	postService := services.NewPostService(postRepo, media, events, logger)

	view := handlers.NewView(renderer, sessions, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(requestTimeout),
		db.Middleware(dbConn),
		sessions.Middleware,
		handlers.LoadCurrentUser(userService, logger),
	)
	router.Handle("/static/*", http.StripPrefix("/static", web.Static()))
	handlers.PagesRouter(router, view)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, view)
	})
	router.Get("/media/*", handlers.Media(postService, view))
	handlers.BlogRouter(router, postService, view)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	srv.router = router
	srv.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return srv, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "starting server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then closes the database, object storage and broker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if cerr := s.close(); err == nil {
		err = cerr
	}
	return err
}

func (s *Server) close() error {
	var errs []error
	if s.broker != nil {
		errs = append(errs, s.broker.Close())
	}
	if s.objects != nil {
		errs = append(errs, s.objects.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}
