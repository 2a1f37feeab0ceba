package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gti-mcp-go/internal/config"
	"github.com/google/gti-mcp-go/internal/server"

	// Import tool packages to trigger init() registration
	_ "github.com/google/gti-mcp-go/internal/tools/collections"
	_ "github.com/google/gti-mcp-go/internal/tools/files"
	_ "github.com/google/gti-mcp-go/internal/tools/intelligence"
	_ "github.com/google/gti-mcp-go/internal/tools/netloc"
	_ "github.com/google/gti-mcp-go/internal/tools/urls"
)

func main() {
	// Load configuration first to determine log level
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: server.ParseLogLevel(cfg.LogLevel),
	}))

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting Google Threat Intelligence MCP Server",
		"mode", cfg.Mode,
		"profile", cfg.Profile)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error during server cleanup", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	logger.Info("Server starting...")
	if err := srv.Serve(ctx); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
