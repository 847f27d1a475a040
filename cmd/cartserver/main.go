// Command cartserver serves the remote cart REST contract for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nikolayk812/cartmirror/internal/config"
	"github.com/nikolayk812/cartmirror/internal/db"
	"github.com/nikolayk812/cartmirror/internal/httpserver"
	"github.com/nikolayk812/cartmirror/internal/logger"
	"github.com/nikolayk812/cartmirror/internal/migrate"
	"github.com/nikolayk812/cartmirror/internal/port"
	"github.com/nikolayk812/cartmirror/internal/repository"
	"github.com/nikolayk812/cartmirror/internal/shutdown"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.Options{Service: "cartserver", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := run(cfg, log); err != nil {
		log.Error("cartserver stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpserver.NewRouter(repo, log, cfg.RequestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("cartserver listening", "addr", cfg.HTTPAddr, "storage", cfg.ServerStorage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func openRepository(ctx context.Context, cfg config.Config) (port.CartRepository, func(), error) {
	if cfg.ServerStorage != config.KVBackendPostgres {
		return repository.NewMemoryCart(), func() {}, nil
	}

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return nil, nil, fmt.Errorf("db.Connect: %w", err)
	}

	if err := migrate.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate.Apply: %w", err)
	}

	return repository.NewCart(pool), pool.Close, nil
}
