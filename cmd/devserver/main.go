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

	"github.com/sh3r4rd/file_metadata/internal/bootstrap"
	"github.com/sh3r4rd/file_metadata/internal/config"
	"github.com/sh3r4rd/file_metadata/internal/devserver"
	"github.com/sh3r4rd/file_metadata/internal/handler"
	"github.com/sh3r4rd/file_metadata/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("devserver", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log.Level, os.Stdout)

	stores, err := bootstrap.NewStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr: cfg.Server.ListenAddr,
		Handler: devserver.New(devserver.Handlers{
			Upload: handler.NewUpload(stores.Blobs, stores.Records, logger,
				handler.WithMaxUploadBytes(cfg.Upload.MaxBytes)).Handle,
			Metadata:     handler.NewMetadata(stores.Records, logger).Handle,
			MaxBodyBytes: cfg.Upload.MaxBytes,
		}, reg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("devserver listening", "addr", cfg.Server.ListenAddr, "backend", cfg.Storage.Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("devserver shutting down")
	return srv.Shutdown(shutdownCtx)
}
