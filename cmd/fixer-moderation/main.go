package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fixerhq/fixer-moderation/internal/core"
	"github.com/fixerhq/fixer-moderation/internal/di"
	"github.com/fixerhq/fixer-moderation/internal/ports"
	"github.com/fixerhq/fixer-moderation/internal/rules"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	gateway ports.SubmissionGateway,
	watcher *rules.Watcher,
	reviewClient core.ReviewClient,
	cache core.VerdictCache,
	events core.EventPublisher,
) error {
	defer logger.Sync()

	// Start the gateway
	if err := gateway.Start(); err != nil {
		logger.Fatal("Failed to start gateway", zap.Error(err))
		return err
	}

	// Start the rulebook watcher when live reload is configured
	ctx, cancel := context.WithCancel(context.Background())
	if watcher != nil {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("Rulebook watcher stopped", zap.Error(err))
			}
		}()
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the gateway
	if err := gateway.Stop(); err != nil {
		logger.Error("Failed to stop gateway", zap.Error(err))
	}
	cancel()

	// Close any resources that need closing
	if closer, ok := reviewClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close review client", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	// Drain the event publisher
	if stopper, ok := events.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
