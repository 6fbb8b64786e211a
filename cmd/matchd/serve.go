package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chitransport "github.com/ainative-studio/publicfounders/internal/transport/chi"
	"github.com/ainative-studio/publicfounders/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the matching engine HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("starting matchd API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.Strings("db_addrs", a.cfg.Database.Addrs),
	)

	server := chitransport.NewServer(
		a.lifecycle, a.outcomes, a.analytics, a.intents,
		a.weights, a.health, a.cfg.HTTP.APIKeys, a.logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.HTTP.Port),
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second,
	)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
