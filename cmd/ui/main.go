package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"claimsportal/internal"
	"claimsportal/internal/config"
	"claimsportal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level), cfg.Log.Mode)
	internal.DefaultLogger = logger

	opts := []ui.Option{ui.WithLogger(logger)}
	if os.Getenv("COOKIE_SECURE") == "true" {
		opts = append(opts, ui.WithSecureCookies())
	}

	server, err := ui.NewServer(cfg, opts...)
	if err != nil {
		log.Fatal("Failed to create UI server:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Claims backend at %s", cfg.API.BaseURL)
	if err := server.Start(ctx, net.JoinHostPort("localhost", cfg.Server.Port)); err != nil {
		logger.Error("UI server stopped: %v", err)
		os.Exit(1)
	}
}
