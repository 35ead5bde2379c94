package main

import (
	"context"
	"database/sql"
	"delivery-intake-service/internal/adapters/repositories"
	"delivery-intake-service/internal/config"
	"delivery-intake-service/internal/platform/db"
	"delivery-intake-service/internal/platform/logging"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:          "dbtool",
		Short:        "Maintenance commands for the delivery intake database",
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "timeout for database operations")

	root.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the deliveries table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), timeout, func(ctx context.Context, sqlDB *sql.DB, logger zerolog.Logger) error {
				logger.Info().Msg("initializing database schema")
				if err := repositories.InitSchema(ctx, sqlDB); err != nil {
					return fmt.Errorf("schema initialization failed: %w", err)
				}
				logger.Info().Msg("schema ready")
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Verify the configured database is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), timeout, func(ctx context.Context, sqlDB *sql.DB, logger zerolog.Logger) error {
				if err := db.Ping(ctx, sqlDB, timeout); err != nil {
					return err
				}
				logger.Info().Msg("database reachable")
				return nil
			})
		},
	})

	return root
}

func withDB(
	ctx context.Context,
	timeout time.Duration,
	fn func(ctx context.Context, sqlDB *sql.DB, logger zerolog.Logger) error,
) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New("dbtool", cfg.Primary.Env, cfg.Log.Level)

	sqlDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := fn(ctx, sqlDB, logger); err != nil {
		logger.Error().Err(err).Msg("dbtool failed")
		return err
	}
	return nil
}
