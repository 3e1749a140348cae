// Package server wires the HTTP server together: router, middleware, routes,
// and the database lifecycle. main.go stays minimal; everything that can be
// constructed and tested without a process boundary lives here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/movieweb/internal/handler"
	"github.com/sakif/movieweb/internal/middleware"
	"github.com/sakif/movieweb/internal/omdb"
	sqliteRepo "github.com/sakif/movieweb/internal/repository/sqlite"
	"github.com/sakif/movieweb/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port       int
	DBPath     string // path to the SQLite database file
	OMDbAPIKey string // empty disables metadata lookups, not the server
}

// Server owns the router and the database connection. The connection is
// closed during shutdown, after in-flight requests have drained.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and assembles the whole dependency chain:
// sqlite.DB → services → handlers → routes. Each layer only receives what
// it needs — services get repository interfaces, handlers get services.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /api/users                        → list users
//	POST   /api/users                        → add user
//	GET    /api/users/{name}                 → user by name
//	DELETE /api/users/{id}                   → delete user (cascades)
//	GET    /api/users/{id}/movies            → a user's movies
//	POST   /api/users/{id}/movies            → add movie to a user's list
//	DELETE /api/users/{id}/movies/{movieID}  → remove movie from a list
//	GET    /api/movies                       → all movies
//	GET    /api/movies/{id}                  → movie by id
//	PUT    /api/movies/{id}/rating           → update a movie's rating
//	GET    /api/metadata?title=...           → OMDb pre-fill lookup
func (s *Server) setupRoutes() {
	// Global middleware, in order: request IDs for tracing, real client
	// IPs behind proxies, panic recovery, then our request logging.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	userService := service.NewUserService(s.db.Users(), s.logger)
	movieService := service.NewMovieService(s.db, s.logger)

	userHandler := handler.NewUserHandler(userService, s.logger)
	movieHandler := handler.NewMovieHandler(movieService, s.logger)
	metadataHandler := handler.NewMetadataHandler(omdb.New(s.config.OMDbAPIKey), s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/users", userHandler.HandleList)
		r.Post("/users", userHandler.HandleCreate)
		r.Get("/users/{name}", userHandler.HandleGetByName)
		r.Delete("/users/{id}", userHandler.HandleDelete)

		r.Get("/users/{id}/movies", movieHandler.HandleListForUser)
		r.Post("/users/{id}/movies", movieHandler.HandleAddToUser)
		r.Delete("/users/{id}/movies/{movieID}", movieHandler.HandleRemoveFromUser)

		r.Get("/movies", movieHandler.HandleList)
		r.Get("/movies/{id}", movieHandler.HandleGetByID)
		r.Put("/movies/{id}/rating", movieHandler.HandleUpdateRating)

		r.Get("/metadata", metadataHandler.HandleLookup)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests (30s
// budget), and close the database last so the WAL is flushed cleanly.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
