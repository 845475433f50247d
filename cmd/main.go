package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedrouter/pkg/logger"
)

func main() {
	app := NewApplication()

	if err := app.Initialize(); err != nil {
		logger.FatalCtx(app.ctx, "Application initialization failed: %v", err)
	}

	if err := app.Start(); err != nil {
		logger.FatalCtx(app.ctx, "Application startup failed: %v", err)
	}

	// Wait for exit signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.InfoCtx(app.ctx, "Received exit signal: %v", sig)

	if err := app.Shutdown(30 * time.Second); err != nil {
		logger.ErrorCtx(app.ctx, "Application shutdown failed: %v", err)
		os.Exit(1)
	}

	logger.InfoCtx(app.ctx, "Application safely exited")
}
