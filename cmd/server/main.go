// Package main is the entry point for the collabhub API server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package is kept minimal. Its job is to:
// 1. Read configuration (from env vars and an optional .env file)
// 2. Create the logger
// 3. Hand off to internal/server
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
//
// COMMANDS:
//
//	server          same as "server serve"
//	server serve    run the HTTP API
//	server seed     insert the canonical roles and tech stacks into empty collections
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sujiiiiit/collabhub-backend/internal/config"
	"github.com/sujiiiiit/collabhub-backend/internal/server"
	"github.com/sujiiiiit/collabhub-backend/internal/service"
)

func main() {
	// A missing .env is normal in production; the environment is set by the
	// deployment instead.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("reading .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "server",
		Short:         "collabhub API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				slog.Error("invalid configuration", slog.String("error", err.Error()))
				return err
			}

			// slog.NewTextHandler outputs human-readable key=value logs.
			// Log levels (from least to most severe): Debug → Info → Warn → Error
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: cfg.Server.LogLevel,
			}))
			slog.SetDefault(logger)

			srv, err := server.New(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("failed to create server", slog.String("error", err.Error()))
				return err
			}

			// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
			if err := srv.Start(); err != nil {
				logger.Error("server error", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the canonical roles and tech stacks",
		Long: "Insert the canonical roles and tech stacks. A collection that already " +
			"holds documents is left untouched, so running seed twice is safe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

			storeCfg, err := config.LoadStore()
			if err != nil {
				logger.Error("invalid configuration", slog.String("error", err.Error()))
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := server.OpenStore(ctx, *storeCfg, logger)
			if err != nil {
				logger.Error("opening store", slog.String("error", err.Error()))
				return err
			}
			defer store.Close()

			taxonomy := service.NewTaxonomyService(store.Roles, store.TechStacks, logger)
			res, err := taxonomy.Seed(ctx)
			if err != nil {
				logger.Error("seeding failed", slog.String("error", err.Error()))
				return err
			}

			logger.Info("seed complete",
				slog.Int("roles", res.Roles),
				slog.Int("techStacks", res.TechStacks),
			)
			return nil
		},
	}
}
