package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/leverage-sdk/internal/config"
	"github.com/aman-zulfiqar/leverage-sdk/internal/quote"
	"github.com/aman-zulfiqar/leverage-sdk/internal/server"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It loads protocol parameters, builds the quote service and serves it over HTTP
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	logger.SetLevel(cfg.Level())

	// Protocol parameters mirror the on-chain program
	params, err := config.LoadProtocolParams(cfg.ProtocolParamsFile)
	if err != nil {
		logger.WithError(err).Fatal("failed to load protocol params")
	}
	logger.WithFields(logrus.Fields{
		"percent_scale":          params.PercentScale,
		"target_utilization_bps": params.Borrow.TargetUtilizationBps,
		"max_multiplier_bps":     params.Borrow.MaxMultiplierBps,
		"default_slippage_bps":   params.DefaultSlippageBps,
	}).Info("protocol params loaded")

	svc, err := quote.NewFromParams(params, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to create quote service")
	}

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: &server.Handlers{
			Quotes:  svc,
			DevMode: cfg.DevMode,
			Logger:  logger,
		},
		Config: server.ServerConfig{
			Addr:           cfg.APIAddr,
			DevMode:        cfg.DevMode,
			APIKey:         cfg.APIKey,
			ReadTimeout:    cfg.HTTPReadTimeout,
			WriteTimeout:   cfg.HTTPWriteTimeout,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// http.ErrServerClosed is expected during graceful shutdown
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("api server failed")
		}
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
