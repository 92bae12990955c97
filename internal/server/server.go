// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the wiring layer: it decides which URL patterns map to
// which handlers, what middleware runs where, and how the server starts
// and stops.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go: config.Load() → server.New(cfg, logger)
//	New:     sqlstore.DB → services → handlers → routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/crm/internal/auth"
	"github.com/sakif/crm/internal/config"
	"github.com/sakif/crm/internal/handler"
	"github.com/sakif/crm/internal/middleware"
	"github.com/sakif/crm/internal/repository/sqlstore"
	"github.com/sakif/crm/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database pool and the rate limiter's sweeper; both
// are released by Close, which Start calls on shutdown.
type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	db      *sqlstore.DB
	limiter *middleware.RateLimiter
}

// New opens the store and assembles services, handlers and routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqlstore.New(cfg.DatabaseURL, sqlstore.Options{MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var tokens *auth.TokenService
	if cfg.JWTSecret != "" {
		tokens, err = auth.NewTokenService(cfg.JWTSecret, auth.DefaultTokenTTL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating token service: %w", err)
		}
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		limiter: middleware.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginRateBurst),
	}
	s.setupRoutes(tokens)

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTES:
//
//	POST   /users                                → register (rate limited)
//	GET    /users/login?username=&password=      → login (rate limited)
//	POST   /users/login                          → login with a JSON body (rate limited)
//	POST   /users/logout                         → clear session cookie
//	GET    /users/me                             → session user (JWT_SECRET only)
//	GET    /users/{id}
//	GET    /companies?userId=
//	POST   /companies
//	GET    /companies/with-contacts?userId=
//	GET    /companies/{id}
//	GET    /companies/{id}/contacts
//	DELETE /companies/{id}                       → deletes its contacts too
//	GET    /contacts
//	POST   /contacts
//	GET    /contacts/{id}
//	DELETE /contacts/{id}
//	POST   /meetings
//	GET    /meetings/{id}
//	GET    /meetings/user/{userId}
//	GET    /meetings/user/{userId}/date/{date}   → date is dd-mm-yyyy
//	DELETE /meetings/{id}
//	GET    /healthz
//
// MIDDLEWARE ORDER MATTERS:
// RequestID and RealIP run before the logger so it can record both;
// Recoverer sits inside the logger so a panic is still logged as a 500.
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "X-Request-Id"},
		AllowCredentials: !allowsAnyOrigin(s.config.CORSAllowedOrigins),
		MaxAge:           300,
	}))
	// Sessions are optional on every route: the middleware only records
	// who is calling, it never rejects.
	s.router.Use(auth.OptionalAuth(tokens))

	userService := service.NewUserService(s.db, auth.NewPasswordService(), tokens, s.logger)
	companyService := service.NewCompanyService(s.db, s.db, s.logger)
	contactService := service.NewContactService(s.db, s.logger)
	meetingService := service.NewMeetingService(s.db, s.logger)

	users := handler.NewUserHandler(userService, tokens, s.logger)
	companies := handler.NewCompanyHandler(companyService, s.logger)
	contacts := handler.NewContactHandler(contactService, s.logger)
	meetings := handler.NewMeetingHandler(meetingService, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.limiter))
			r.Post("/", users.HandleRegister)
			r.Get("/login", users.HandleLogin)
			r.Post("/login", users.HandleLogin)
		})
		r.Post("/logout", users.HandleLogout)
		if tokens != nil {
			r.With(auth.RequireAuth(tokens)).Get("/me", users.HandleMe)
		}
		r.Get("/{id}", users.HandleGetByID)
	})

	s.router.Route("/companies", func(r chi.Router) {
		r.Get("/", companies.HandleList)
		r.Post("/", companies.HandleCreate)
		r.Get("/with-contacts", companies.HandleListWithContacts)
		r.Get("/{id}", companies.HandleGetByID)
		r.Get("/{id}/contacts", companies.HandleListContacts)
		r.Delete("/{id}", companies.HandleDelete)
	})

	s.router.Route("/contacts", func(r chi.Router) {
		r.Get("/", contacts.HandleList)
		r.Post("/", contacts.HandleCreate)
		r.Get("/{id}", contacts.HandleGetByID)
		r.Delete("/{id}", contacts.HandleDelete)
	})

	s.router.Route("/meetings", func(r chi.Router) {
		r.Post("/", meetings.HandleCreate)
		r.Get("/{id}", meetings.HandleGetByID)
		r.Get("/user/{userId}", meetings.HandleListByUser)
		r.Get("/user/{userId}/date/{date}", meetings.HandleListByUserOnDate)
		r.Delete("/{id}", meetings.HandleDelete)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"status":"unavailable","database":%q}`+"\n", s.db.Driver())
		return
	}
	fmt.Fprintf(w, `{"status":"ok","database":%q}`+"\n", s.db.Driver())
}

// Close releases the database pool and stops background work.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.db.Close()
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests 30 seconds, and
// close the database pool.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.db.Driver()),
			slog.Bool("sessions", s.config.JWTSecret != ""),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
