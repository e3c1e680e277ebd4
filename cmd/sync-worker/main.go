package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"

	"github.com/wolfman30/nectar-lead-tracker/cmd/mainconfig"
	"github.com/wolfman30/nectar-lead-tracker/internal/app/bootstrap"
	appconfig "github.com/wolfman30/nectar-lead-tracker/internal/config"
	"github.com/wolfman30/nectar-lead-tracker/internal/sheetsync"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// sync-worker drains queued sheet mirror events and posts them to each
// user's sheet endpoint.
func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat).Component("sync-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SyncTransport != "sqs" && cfg.SyncTransport != "amqp" {
		logger.Error("sync worker requires SYNC_TRANSPORT=sqs or amqp", "sync_transport", cfg.SyncTransport)
		os.Exit(1)
	}

	var awsCfg *aws.Config
	if cfg.SyncTransport == "sqs" {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		awsCfg = &loaded
	}

	sink := sheetsync.NewWebhookTransport(nil, cfg.SyncTimeout, logger)
	relay, err := bootstrap.BuildRelay(cfg, awsCfg, sink, logger)
	if err != nil {
		logger.Error("failed to build relay", "error", err)
		os.Exit(1)
	}
	defer func() { _ = relay.Close() }()

	logger.Info("sync worker started", "transport", relay.Name)
	if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("relay stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("sync worker stopped")
}
