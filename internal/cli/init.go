// Package cli holds the start-up steps shared by the tracker commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tracker/internal/amqp"
	"tracker/internal/config"
	"tracker/internal/log"
)

// SetupLogger installs a text logger on stderr as the slog default.
func SetupLogger(level slog.Level) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = level
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads variables from path, or from ./.env when path is empty.
// A missing default .env is fine; a missing explicit file is not.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig(logger *log.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		return nil, err
	}
	return cfg, nil
}

// ConnectAMQP returns a connected client, or nil when AMQP is not configured
// or the broker is unreachable. Events are optional so a failure only warns.
func ConnectAMQP(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if !cfg.AMQPEnabled() {
		return nil
	}
	l := logger.WithComponent(log.ComponentAMQP)
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		l.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}
	l.Debug("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs once, after the signal and before the context is cancelled.
func GracefulShutdown(parent context.Context, logger *log.Logger, cleanup func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			if cleanup != nil {
				cleanup()
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
