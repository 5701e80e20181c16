package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/oncoassist/internal/adapter/driven/azure"
	httphandler "github.com/ericfisherdev/oncoassist/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/oncoassist/internal/adapter/driving/web"
	"github.com/ericfisherdev/oncoassist/internal/application"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// 1. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Load configuration and open the credential store.
	cfg, store, closeDB, err := openCredentialStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"encrypt_credentials", cfg.EncryptsCredentials(),
	)

	// 3. Metrics registry.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := application.NewMetrics(reg)
	if err != nil {
		return err
	}

	// 4. Wire adapters and services.
	client := azure.NewClient(slog.Default())
	askSvc := application.NewAskService(client, metrics, slog.Default())
	session, err := application.NewSession(ctx, store, askSvc, slog.Default())
	if err != nil {
		return err
	}
	slog.Info("session ready", "api_key_configured", session.State().HasCredential())

	// 5. Register API, metrics and GUI routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(askSvc, session, slog.Default()))
	httphandler.RegisterMetricsRoute(mux, reg)
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(session, slog.Default()))

	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	// Upstream answers routinely take tens of seconds; the write timeout
	// only guards against a client that stops reading.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 6. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 7. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
