// Package server wires the application together: storage, GitHub client,
// services, handlers and routes, plus lifecycle management.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/github"
	"github.com/sakif/devhub/internal/handler"
	"github.com/sakif/devhub/internal/middleware"
	"github.com/sakif/devhub/internal/repository/sqlite"
	"github.com/sakif/devhub/internal/service"
)

// Config holds everything the server needs to start.
type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
	SyncTimeout        time.Duration
}

// Server is the composed application.
type Server struct {
	httpServer *http.Server
	db         *sqlite.DB
	logger     *slog.Logger
}

// New builds the full dependency graph bottom-up: database, GitHub client,
// services, handlers, router.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring tokens: %w", err)
	}

	provider := auth.NewGitHubProvider(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubCallbackURL)
	ghClient := github.NewClient(&http.Client{Timeout: 30 * time.Second})

	authService := service.NewAuthService(db, tokens, logger)
	syncService := service.NewSyncService(ghClient, db, db, logger, cfg.SyncTimeout)
	profileService := service.NewProfileService(db, logger)
	activityService := service.NewActivityService(db, logger)

	authHandler := handler.NewAuthHandler(provider, authService, syncService, activityService, logger)
	profileHandler := handler.NewProfileHandler(profileService, syncService, activityService, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	r.With(auth.OptionalAuth(tokens)).Post("/auth/logout", authHandler.HandleLogout)

	r.Route("/api", func(r chi.Router) {
		// Public reads: the profile directory is browsable without a session.
		r.Get("/profiles", profileHandler.HandleDirectory)
		r.Get("/profiles/{userID}", profileHandler.HandleGetProfile)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Put("/profile", profileHandler.HandleUpdateProfile)
			r.Post("/profile/sync", profileHandler.HandleSync)
			r.Post("/profiles/{userID}/follow", profileHandler.HandleToggleFollow)
			r.Get("/activity", profileHandler.HandleActivity)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 3 * time.Minute, // manual sync can be slow
			IdleTimeout:  60 * time.Second,
		},
		db:     db,
		logger: logger,
	}, nil
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	err := s.httpServer.Shutdown(ctx)
	if dbErr := s.db.Close(); err == nil {
		err = dbErr
	}
	return err
}
