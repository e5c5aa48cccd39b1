package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmaiga/solidavenir/internal/gateway"
	"github.com/dmaiga/solidavenir/internal/ledger"
	"github.com/dmaiga/solidavenir/internal/mirror"
	"github.com/dmaiga/solidavenir/pkg/config"
	"github.com/dmaiga/solidavenir/pkg/logger"
	"github.com/dmaiga/solidavenir/pkg/monitoring"
)

const (
	serviceName    = "ledger-gateway"
	serviceVersion = "1.0.0"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	ctx := context.Background()

	tracing, err := monitoring.NewTracingManager(ctx, &monitoring.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Endpoint:       cfg.Tracing.Endpoint,
		Environment:    cfg.Tracing.Environment,
		SamplingRate:   cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize tracing")
	}

	metrics := monitoring.NewMetricsCollector(serviceName)

	ledgerClient, err := ledger.NewClient(&cfg.Hedera, logger, metrics, tracing)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create ledger client")
	}

	mirrorClient := mirror.NewClient(cfg.Mirror.BaseURL, config.Timeout(cfg.Mirror.Timeout), logger, metrics)

	service := gateway.NewService(ledgerClient, mirrorClient, logger)
	server := gateway.NewServer(cfg, service, ledgerClient, metrics, tracing, logger)

	// Start the server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server failed")
			exitCode = 1
		}
	}

	logger.Info("Shutting down ledger gateway...")

	shutdownCtx, cancel := context.WithTimeout(ctx, config.Timeout(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to shutdown gracefully")
		exitCode = 1
	}

	logger.Info("Ledger gateway stopped")
	cancel()
	os.Exit(exitCode)
}
