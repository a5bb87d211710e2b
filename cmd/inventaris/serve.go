package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/erazemk/inventaris/internal/api"
	"github.com/erazemk/inventaris/internal/importer"
	"github.com/erazemk/inventaris/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	// Without a configured secret, use the one stored in the database so
	// tokens survive restarts.
	jwtSecret := cfg.Server.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = store.GetJWTSecret(cmd.Context(), a.DB)
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(cfg.Storage.BarcodeDir, 0o755); err != nil {
		return err
	}

	handler := api.NewRouter(api.Deps{
		DB:               a.DB,
		Inventory:        a.Inventory,
		Importer:         importer.NewReconciler(a.Inventory, slog.Default()),
		Audit:            a.Recorder,
		JWTSecret:        jwtSecret,
		BarcodeDir:       cfg.Storage.BarcodeDir,
		BarcodeURLPrefix: cfg.Storage.BarcodeURLPrefix,
		MaxUploadBytes:   cfg.Import.MaxUploadBytes,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", cfg.Server.Addr, "database", a.DB.Driver())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			return err
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}

	slog.Info("server stopped, closing database")
	return nil
}
