package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gadgetstore/internal/config"
	"gadgetstore/internal/logger"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// --- Infrastructure and routes ---
	app, err := NewApp(context.Background(), cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize application", zap.Error(err))
	}
	if err := app.StartBackground(); err != nil {
		zlog.Error("Failed to start background workers", zap.Error(err))
	}

	// --- Start HTTP Server ---
	zlog.Info("Starting server", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.App.Port); err != nil {
			zlog.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	zlog.Info("Shutting down server...")

	if err := app.Fiber.ShutdownWithTimeout(shutdownTimeout); err != nil {
		zlog.Error("Error during Fiber shutdown", zap.Error(err))
	}
	if err := app.Close(); err != nil {
		zlog.Error("Error releasing resources", zap.Error(err))
	}
	zlog.Info("Server gracefully stopped")
}
