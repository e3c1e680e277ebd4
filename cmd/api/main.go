package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"

	"github.com/wolfman30/nectar-lead-tracker/cmd/mainconfig"
	"github.com/wolfman30/nectar-lead-tracker/internal/app/bootstrap"
	appconfig "github.com/wolfman30/nectar-lead-tracker/internal/config"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting nectar lead tracker API",
		"env", cfg.Env,
		"port", cfg.Port,
		"lead_store", cfg.LeadStore,
		"sync_transport", cfg.SyncTransport,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := loadAWS(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Deps{AWS: awsCfg})
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	if app.Scanner != nil {
		go app.Scanner.Run(ctx)
		logger.Info("follow-up reminders enabled", "interval", cfg.ReminderInterval, "recipient", cfg.ReminderRecipient)
	}

	srv := newServer(cfg, app.Handler)

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := app.Close(shutdownCtx); err != nil {
		logger.Error("failed to release resources", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// loadAWS returns nil when no configured backend talks to AWS.
func loadAWS(ctx context.Context, cfg *appconfig.Config) (*aws.Config, error) {
	if !cfg.NeedsAWS() {
		return nil, nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &awsCfg, nil
}

func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
