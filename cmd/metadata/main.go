package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/sh3r4rd/file_metadata/internal/bootstrap"
	"github.com/sh3r4rd/file_metadata/internal/config"
	"github.com/sh3r4rd/file_metadata/internal/handler"
	"github.com/sh3r4rd/file_metadata/internal/logging"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level, os.Stdout)

	stores, err := bootstrap.NewStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("init stores", "err", err)
		os.Exit(1)
	}
	defer stores.Close()

	lambda.Start(handler.NewMetadata(stores.Records, logger).Handle)
}
