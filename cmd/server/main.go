package main

import (
	"context"
	"delivery-intake-service/internal/adapters/repositories"
	"delivery-intake-service/internal/api"
	"delivery-intake-service/internal/config"
	"delivery-intake-service/internal/domain"
	"delivery-intake-service/internal/platform/db"
	"delivery-intake-service/internal/platform/logging"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(context.Background()); err != nil {
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("server exited")
	}
}

// run is the application composition root.
// It wires the SQL repository and tracking number generator behind ports and
// serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New("delivery-intake", cfg.Primary.Env, cfg.Log.Level)
	zerolog.DefaultContextLogger = &logger

	sqlDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// The server starts even when the database is down; requests then report
	// the connection failure individually.
	if err := db.Ping(ctx, sqlDB, 5*time.Second); err != nil {
		logger.Warn().Err(err).Msg("database not reachable at startup")
	}

	var limiter *api.ClientRateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = api.NewClientRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
		defer limiter.Stop()
	}

	repo := repositories.NewSQLDeliveryRepository(sqlDB)
	router := api.NewRouter(repo, domain.NewTrackingNumberGenerator(), api.RouterOptions{
		Logger:         logger,
		RequestTimeout: cfg.Server.RequestTimeout,
		Limiter:        limiter,
		TrustProxy:     cfg.Server.TrustProxy,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("driver", cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
