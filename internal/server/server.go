// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes (session gates included)
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New() creates:
//	  sqlite.DB ─┬─→ docstore.Store → Article/Product/ProfileService ─→ handlers
//	             └─→ AuthService (accounts) ─────────────────────────→ AuthHandler
//
// This is the "composition root" pattern. Every dependency is built in New
// and nowhere else.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"

	"github.com/sakif/deskboard/internal/auth"
	"github.com/sakif/deskboard/internal/config"
	"github.com/sakif/deskboard/internal/docstore"
	"github.com/sakif/deskboard/internal/handler"
	"github.com/sakif/deskboard/internal/middleware"
	sqliteRepo "github.com/sakif/deskboard/internal/repository/sqlite"
	"github.com/sakif/deskboard/internal/service"
)

// shutdownTimeout is how long in-flight requests get to finish on SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it after the HTTP
// server has drained; tests that never call Start call Close instead.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

// New builds the whole dependency graph and the router.
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` so it is not mistaken for
// the modernc driver package.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("server: creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                    → liveness + database ping
//	GET    /login, /register           → pages; signed-in visitors go to /dashboard
//	GET    /dashboard, /profile        → pages; anonymous visitors go to /login
//	GET    /auth/github/{login,callback} (only when GitHub is configured)
//	POST   /api/auth/{register,login,logout}
//	GET    /api/me
//	       /api/articles[/{id}|/stream]  (session required)
//	       /api/products[/{id}|/stream|/categories]
//	       /api/profile
//	*      anything else → /login (JSON 404 under /api)
//
// MIDDLEWARE ORDER MATTERS:
// RequestID runs first so the access log can print it; Recoverer sits inside
// Logger so a recovered panic is still logged as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	// === Services ===
	store := docstore.New(s.db, s.logger)
	articleService := service.NewArticleService(store, s.logger)
	productService := service.NewProductService(store, s.logger)
	profileService := service.NewProfileService(store, s.logger)
	authService := service.NewAuthService(s.db, s.tokens, auth.NewPasswordService(), s.logger)

	// === Handlers ===
	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	pages, err := handler.NewPageHandler(profileService, github != nil, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	authHandler := handler.NewAuthHandler(authService, s.tokens, github, s.config.CookieSecure, s.logger)
	articleHandler := handler.NewArticleHandler(articleService, s.logger)
	productHandler := handler.NewProductHandler(productService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	// === Page Routes ===
	// The gates are the whole route-guard story: each page group is wrapped
	// in the middleware that decides whether the visitor belongs there.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RedirectIfAuthenticated(s.tokens, "/dashboard"))
		r.Get("/login", pages.HandleLogin)
		r.Get("/register", pages.HandleRegister)
	})
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RedirectIfAnonymous(s.tokens, "/login"))
		r.Get("/dashboard", pages.HandleDashboard)
		r.Get("/profile", pages.HandleProfile)
	})

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		// Bodies are always JSON, with or without a Content-Type header.
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", articleHandler.HandleList)
				r.Post("/", articleHandler.HandleCreate)
				r.Get("/stream", articleHandler.HandleStream)
				r.Get("/{id}", articleHandler.HandleGet)
				r.Put("/{id}", articleHandler.HandleUpdate)
				r.Delete("/{id}", articleHandler.HandleDelete)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.HandleList)
				r.Post("/", productHandler.HandleCreate)
				r.Get("/stream", productHandler.HandleStream)
				r.Get("/categories", productHandler.HandleCategories)
				r.Get("/{id}", productHandler.HandleGet)
				r.Put("/{id}", productHandler.HandleUpdate)
				r.Delete("/{id}", productHandler.HandleDelete)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.HandleGet)
				r.Put("/", profileHandler.HandleSave)
				r.Delete("/", profileHandler.HandleDelete)
			})
		})
	})

	// === Catch-all ===
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not_found","message":"Resource not found."}` + "\n"))
			return
		}
		pages.HandleFallback(w, r)
	})

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check: database ping failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}` + "\n"))
		return
	}
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// RoutesDoc renders the route table as markdown (cmd/server -routes).
func (s *Server) RoutesDoc() string {
	return docgen.MarkdownRoutesDoc(s.router, docgen.MarkdownOpts{
		ProjectPath: "github.com/sakif/deskboard",
		Intro:       "Routes served by deskboard.",
	})
}

// Close releases the database. Start does this itself on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new connections
// 2. Cancel the base context, which ends every open event stream
// 3. Wait up to 30s for in-flight requests to finish
// 4. Close the database (flushes WAL, releases the file lock)
//
// Without step 2, a single open dashboard tab would hold Shutdown for the
// full timeout, since a stream never finishes on its own.
func (s *Server) Start() error {
	defer s.db.Close()

	baseCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelStreams)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("github", s.config.GitHubEnabled()),
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

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
