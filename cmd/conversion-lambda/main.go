package main

import (
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

	if err := cfg.ValidateRelay(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("conversion lambda ready",
		"api_version", cfg.MetaAPIVersion,
		"test_mode", cfg.MetaTestEventCode != "",
	)
	lambda.Start(gateway.LambdaHandler(mainconfig.NewRelayHandler(cfg, nil, logger)))
}
