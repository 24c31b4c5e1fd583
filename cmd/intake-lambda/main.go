package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/richcards/leadrelay/cmd/mainconfig"
	appconfig "github.com/richcards/leadrelay/internal/config"
	"github.com/richcards/leadrelay/internal/gateway"
	"github.com/richcards/leadrelay/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if err := cfg.ValidateIntake(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	handler, closeStore, err := mainconfig.NewIntakeHandler(ctx, cfg, awsCfg, nil, logger)
	if err != nil {
		logger.Error("failed to build intake handler", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	logger.Info("intake lambda ready",
		"email_provider", cfg.EmailProvider,
		"submissions_backend", cfg.SubmissionsBackend,
		"meta_configured", cfg.MetaConfigured(),
	)
	lambda.Start(gateway.LambdaHandler(handler))
}
