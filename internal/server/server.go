// Package server is the composition root: it wires the database,
// executor, session store, services, and handlers together and owns the
// HTTP server lifecycle.
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

	"github.com/sakif/c-playground/internal/auth"
	"github.com/sakif/c-playground/internal/executor/gcc"
	"github.com/sakif/c-playground/internal/handler"
	"github.com/sakif/c-playground/internal/middleware"
	sqliteRepo "github.com/sakif/c-playground/internal/repository/sqlite"
	"github.com/sakif/c-playground/internal/service"
	"github.com/sakif/c-playground/internal/session"
)

// Config holds server configuration, assembled in main from env vars.
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DBPath      string

	// GCCPath overrides the compiler binary; empty means "gcc" from
	// PATH.
	GCCPath string

	// JWTSecret enables authentication. When empty the server still
	// runs — runs and snippets work anonymously, auth routes are not
	// registered.
	JWTSecret string

	// GitHub OAuth App credentials. Optional; local email/password
	// auth works without them.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and every long-lived resource behind it. The
// database and the session store must both be torn down on shutdown:
// the DB to flush the WAL, the store so no compiled child process
// outlives the server.
type Server struct {
	router   *chi.Mux
	config   Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	sessions *session.Store
}

// New creates a Server and assembles the whole dependency chain:
// DB → repositories → services → handlers → routes. Each layer only
// sees the one below it.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		sessions: session.NewStore(session.DefaultTTL, logger),
	}

	if err := s.setupRoutes(); err != nil {
		s.sessions.Stop()
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and every route.
//
// ROUTE STRUCTURE:
//
//	GET    /                      → playground page (HTML)
//	GET    /static/*              → static assets
//	POST   /api/run               → compile and run
//	POST   /api/run/input         → resume a paused run
//	POST   /api/analyze           → scan source structure
//	GET    /api/snippets          → list snippets
//	POST   /api/snippets          → create snippet
//	GET    /api/snippets/{id}     → get snippet
//	PUT    /api/snippets/{id}     → update snippet
//	DELETE /api/snippets/{id}     → delete snippet
//	GET    /api/me                → current user          [auth]
//	POST   /auth/register         → local registration    [auth]
//	POST   /auth/login            → local login           [auth]
//	POST   /auth/logout           → clear token cookie    [auth]
//	GET    /auth/github/login     → start OAuth flow      [auth]
//	GET    /auth/github/callback  → finish OAuth flow     [auth]
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	playgroundHandler, err := handler.NewPlaygroundHandler(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating playground handler: %w", err)
	}
	s.router.Get("/", playgroundHandler.HandlePlayground)

	// Executor. A missing gcc is not fatal: New logs a warning and each
	// run comes back as a system error, so the rest of the app keeps
	// working.
	gccCfg := gcc.DefaultConfig()
	if s.config.GCCPath != "" {
		gccCfg.Path = s.config.GCCPath
	}
	exec := gcc.New(gccCfg, s.logger)

	runService := service.NewRunService(exec, s.sessions, s.logger)
	runHandler := handler.NewRunHandler(runService, s.logger)
	analyzeHandler := handler.NewAnalyzeHandler(s.logger)

	snippetService := service.NewSnippetService(s.db, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)

	// Auth is optional. Without a JWT secret the API stays fully
	// anonymous and the auth routes don't exist.
	var tokens *auth.TokenService
	var authHandler *handler.AuthHandler
	if s.config.JWTSecret != "" {
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}

		var github *auth.GitHubProvider
		if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
			github = auth.NewGitHubProvider(
				s.config.GitHubClientID,
				s.config.GitHubClientSecret,
				s.config.GitHubCallbackURL,
			)
		} else {
			s.logger.Warn("GitHub OAuth not configured — only local accounts available")
		}

		authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
		authHandler = handler.NewAuthHandler(github, authService, s.logger)
	}

	s.router.Route("/api", func(r chi.Router) {
		if tokens != nil {
			r.Use(auth.OptionalAuth(tokens))
		}

		r.Post("/run", runHandler.HandleRun)
		r.Post("/run/input", runHandler.HandleResume)
		r.Post("/analyze", analyzeHandler.HandleAnalyze)

		r.Get("/snippets", snippetHandler.HandleList)
		r.Post("/snippets", snippetHandler.HandleCreate)
		r.Get("/snippets/{id}", snippetHandler.HandleGet)
		r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
		r.Delete("/snippets/{id}", snippetHandler.HandleDelete)

		if tokens != nil {
			r.With(auth.RequireAuth(tokens)).Get("/me", authHandler.HandleMe)
		}
	})

	if authHandler != nil {
		s.router.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		})
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests,
// kill parked interactive runs, close the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.sessions.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // compiles plus a poll window can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
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
