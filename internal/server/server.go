// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects the store, sessions,
// services, handlers, middleware, and routes. It decides:
//   - Which document store backs the repositories (MongoDB or SQLite)
//   - Which session store backs logins (Redis or in-process)
//   - Which URL patterns map to which handler functions
//   - What middleware runs on which routes
//   - How the server starts and stops gracefully
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/NewRouter), rather than scattered across the codebase. Nothing
// registers itself at import time.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sujiiiiit/collabhub-backend/internal/auth"
	"github.com/sujiiiiit/collabhub-backend/internal/config"
	"github.com/sujiiiiit/collabhub-backend/internal/handler"
	"github.com/sujiiiiit/collabhub-backend/internal/middleware"
	"github.com/sujiiiiit/collabhub-backend/internal/repository"
	"github.com/sujiiiiit/collabhub-backend/internal/repository/mongodb"
	sqliteRepo "github.com/sujiiiiit/collabhub-backend/internal/repository/sqlite"
	"github.com/sujiiiiit/collabhub-backend/internal/service"
	"github.com/sujiiiiit/collabhub-backend/internal/session"
)

// Server represents the HTTP server and the resources it owns.
//
// RESOURCE MANAGEMENT:
// The Server owns the store connection and, when configured, the Redis
// client. Both are closed in Start() after the HTTP server has drained.
type Server struct {
	router  http.Handler
	config  *config.Config
	logger  *slog.Logger
	closers []io.Closer
}

// Deps are the externally built dependencies of the router. Tests pass an
// in-memory store, a memory session store and a mock provider.
type Deps struct {
	Config   *config.Config
	Store    *repository.Store
	Sessions session.Store
	Provider service.IdentityProvider
	Logger   *slog.Logger
}

// OpenStore connects to the configured document store.
//
// IMPORT ALIAS:
// repository/sqlite is imported as `sqliteRepo` to avoid confusion with the
// sqlite driver package.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*repository.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("store ready", slog.String("driver", cfg.Driver), slog.String("path", cfg.SQLitePath))
		return db.Store(), nil

	case config.DriverMongo:
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info("store ready", slog.String("driver", cfg.Driver), slog.String("database", cfg.MongoDatabase))
		return db.Store(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// New builds the full dependency graph from cfg.
//
//  1. Open the document store
//  2. Pick the session store (Redis when REDIS_URL is set)
//  3. Configure the GitHub provider
//  4. Build services, handlers and routes (NewRouter)
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{config: cfg, logger: logger}

	store, err := OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	s.closers = append(s.closers, store)

	var sessions session.Store
	if cfg.Session.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		s.closers = append(s.closers, client)
		sessions = session.NewRedisStore(client, "", cfg.Session.TTL)
		logger.Info("session store ready", slog.String("backend", "redis"))
	} else {
		sessions = session.NewMemoryStore(cfg.Session.TTL)
		logger.Warn("REDIS_URL not set; sessions are kept in memory and lost on restart")
	}

	provider := auth.NewGitHubProvider(
		cfg.GitHub.ClientID,
		cfg.GitHub.ClientSecret,
		cfg.GitHub.CallbackURL,
		cfg.GitHub.APITimeout,
	)

	router, err := NewRouter(Deps{
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Provider: provider,
		Logger:   logger,
	})
	if err != nil {
		s.close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	s.router = router
	return s, nil
}

// NewRouter wires services and handlers onto a chi router.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz
//	GET    /auth/github                       → redirect to GitHub
//	GET    /auth/github/callback              → finish login, redirect to client
//	POST   /auth/logout
//	GET    /auth/user                         [session]
//	GET    /auth/access-token                 [session]
//	GET    /auth/github/repos                 [session]
//	GET    /api/roles, /api/roles/{id}
//	POST   /api/roles, PUT|DELETE /api/roles/{id}  [session + admin]
//	GET    /api/techstack
//	POST   /api/rolepost                      (session user is the default owner)
//	GET    /api/rolepost, /api/rolepost/id/{id}, /api/rolepost/user/{userId}
//	PUT    /api/rolepost/update/{id}
//	POST   /api/application/submit            (multipart, PDF résumé)
//	GET    /api/application/{id}, /resume/{id}, /check/{username}/{rolePostId}
//	GET    /api/application/rolepost/{rolePostId}, /rolepost/user/{userId}
//	PUT    /api/application/status/{id}
//	GET    /api/users, /api/users/{id}, /api/users/username/{username}
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (logged by Logger)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Logger: logs each request with timing info
// 4. Recoverer: catches panics and returns 500 instead of crashing
// 5. CORS: only the configured client origin, with credentials
func NewRouter(deps Deps) (http.Handler, error) {
	cfg, logger := deps.Config, deps.Logger

	tokens, err := auth.NewTokenService(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}
	sealer, err := auth.NewSealer(cfg.Session.Secret)
	if err != nil {
		return nil, err
	}
	authn := auth.NewAuthenticator(tokens, deps.Sessions, cfg.Session.TTL, cfg.Server.CookieSecure, logger)

	// DEPENDENCY CHAIN:
	//   repository interfaces → services → handlers
	// The handlers never touch the store. The services never touch HTTP.
	authService := service.NewAuthService(deps.Store.Users, deps.Provider, sealer, logger)
	userService := service.NewUserService(deps.Store.Users, cfg.Auth.AdminUsernames, logger)
	rolePostService := service.NewRolePostService(deps.Store.RolePosts, logger)
	applicationService := service.NewApplicationService(deps.Store.Applications, logger)
	taxonomyService := service.NewTaxonomyService(deps.Store.Roles, deps.Store.TechStacks, logger)

	authHandler := handler.NewAuthHandler(authService, authn, cfg.Server.ClientURL, cfg.Auth.FailureURL, cfg.Server.CookieSecure, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	rolePostHandler := handler.NewRolePostHandler(rolePostService, logger)
	applicationHandler := handler.NewApplicationHandler(applicationService, logger)
	taxonomyHandler := handler.NewTaxonomyHandler(taxonomyService, logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.ClientURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handler.HandleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/github", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAuth)
			r.Get("/user", authHandler.HandleCurrentUser)
			r.Get("/access-token", authHandler.HandleAccessToken)
			r.Get("/github/repos", authHandler.HandleRepositories)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/roles", func(r chi.Router) {
			r.Get("/", taxonomyHandler.HandleListRoles)
			r.Get("/{id}", taxonomyHandler.HandleGetRole)

			r.Group(func(r chi.Router) {
				r.Use(authn.RequireAuth)
				r.Use(auth.RequireAdmin(userService, logger))
				r.Post("/", taxonomyHandler.HandleCreateRole)
				r.Put("/{id}", taxonomyHandler.HandleUpdateRole)
				r.Delete("/{id}", taxonomyHandler.HandleDeleteRole)
			})
		})

		r.Get("/techstack", taxonomyHandler.HandleListTechStacks)

		r.Route("/rolepost", func(r chi.Router) {
			r.Get("/", rolePostHandler.HandleList)
			r.With(authn.OptionalAuth).Post("/", rolePostHandler.HandleCreate)
			r.Get("/id/{id}", rolePostHandler.HandleGet)
			r.Get("/user/{userId}", rolePostHandler.HandleListByUser)
			r.Put("/update/{id}", rolePostHandler.HandleUpdate)
		})

		r.Route("/application", func(r chi.Router) {
			r.With(middleware.ResumeIntake(cfg.MaxResumeBytes, logger)).
				Post("/submit", applicationHandler.HandleSubmit)
			r.Get("/{id}", applicationHandler.HandleGet)
			r.Get("/resume/{id}", applicationHandler.HandleResume)
			r.Get("/check/{username}/{rolePostId}", applicationHandler.HandleCheck)
			r.Get("/rolepost/{rolePostId}", applicationHandler.HandleListByRolePost)
			r.Get("/rolepost/user/{userId}", applicationHandler.HandleListByCreator)
			r.Put("/status/{id}", applicationHandler.HandleUpdateStatus)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.HandleList)
			r.Get("/{id}", userHandler.HandleGet)
			r.Get("/username/{username}", userHandler.HandleGetByUsername)
		})
	})

	return r, nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the store and Redis connections
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second, // résumé uploads
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("url", s.config.Server.ServerURL),
			slog.String("store", s.config.Store.Driver),
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

// close releases owned resources in reverse order of acquisition.
func (s *Server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			s.logger.Error("closing resource", slog.String("error", err.Error()))
		}
	}
	s.closers = nil
}
