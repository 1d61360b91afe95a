package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yungbote/enrollment-backend/internal/app"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

func main() {
	// A local .env is optional; real environment variables win.
	dotenvErr := godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	if dotenvErr == nil {
		log.Info("Loaded environment from .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, log)
	if err != nil {
		log.Error("App init failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		log.Error("Server failed", "error", err)
		a.Close()
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}
