package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dranzd/storebunk-accounting/internal/core/services"
	"github.com/dranzd/storebunk-accounting/internal/handlers"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// The memory driver starts empty; durable drivers replay their history.
	replayed, err := app.rebuild(ctx)
	if err != nil {
		_ = app.close(context.Background())
		return fmt.Errorf("failed to rebuild ledger: %w", err)
	}
	logger.Info("Ledger rebuilt from event store", slog.Int("posted_entries", replayed))
	app.projection.Subscribe(app.store)

	serviceContainer := services.NewServiceContainer(cfg, app.repos, app.entries, app.ledger)
	router, err := handlers.NewRouter(cfg, logger, serviceContainer)
	if err != nil {
		_ = app.close(context.Background())
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			slog.String("port", cfg.Port),
			slog.String("event_store_driver", cfg.EventStoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
		}
		_ = app.close(context.Background())
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	if err := app.close(shutdownCtx); err != nil {
		logger.Error("Event delivery did not drain cleanly", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}
