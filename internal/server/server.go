// Package server wires configuration, the API client and the selected
// transport (stdio or HTTP) into a runnable MCP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/google/gti-mcp-go/internal/config"
	"github.com/google/gti-mcp-go/internal/gti"
	httpserver "github.com/google/gti-mcp-go/internal/http"
	"github.com/google/gti-mcp-go/internal/ratelimit"
	"github.com/google/gti-mcp-go/internal/tools"
)

// ParseLogLevel converts a string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Server wraps the MCP server with our configuration
type Server struct {
	mcpServer  *server.MCPServer
	httpServer *httpserver.Server
	config     *config.Config
	client     *gti.Client
	logger     *slog.Logger
}

// New creates a new MCP server instance
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: ParseLogLevel(cfg.LogLevel),
		}))
	}

	clientOpts := []gti.Option{
		gti.WithTimeout(cfg.RequestTimeout),
		gti.WithLimiter(ratelimit.NewLimiter(cfg.RateLimitRPM, logger)),
		gti.WithLogger(logger),
	}
	if cfg.APIHost != "" {
		clientOpts = append(clientOpts, gti.WithHost(cfg.APIHost))
	}
	client := gti.NewClient(cfg.APIKey, clientOpts...)

	s := &Server{
		config: cfg,
		client: client,
		logger: logger,
	}

	switch cfg.Mode {
	case "stdio":
		mcpServer := server.NewMCPServer(
			"Google Threat Intelligence MCP Server",
			"1.0.0",
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		)
		s.mcpServer = mcpServer

		if err := s.registerTools(); err != nil {
			return nil, fmt.Errorf("failed to register tools: %w", err)
		}

	case "http":
		httpSrv, err := httpserver.New(cfg, logger, client)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP server: %w", err)
		}
		s.httpServer = httpSrv

	default:
		return nil, fmt.Errorf("unknown server mode: %s", cfg.Mode)
	}

	logger.Info("Google Threat Intelligence MCP server initialized",
		"profile", cfg.Profile,
		"mode", cfg.Mode)

	return s, nil
}

// registerTools registers all tools for the configured profile
func (s *Server) registerTools() error {
	if err := tools.AddToolsToServer(s.mcpServer, s.config.Profile, s.logger); err != nil {
		return err
	}

	toolNames := tools.GetToolsForProfile(s.config.Profile)
	s.logger.Info("Registered tools", "count", len(toolNames))

	return nil
}

// Serve starts the server in the configured mode
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting server", "mode", s.config.Mode)

	switch s.config.Mode {
	case "stdio":
		return s.serveStdio(ctx)
	case "http":
		return s.serveHTTP(ctx)
	default:
		return fmt.Errorf("unknown server mode: %s", s.config.Mode)
	}
}

// serveStdio starts the server in STDIO mode. The API client is injected
// into every request context so tool handlers can reach it.
func (s *Server) serveStdio(ctx context.Context) error {
	s.logger.Info("Serving via STDIO")
	return server.ServeStdio(s.mcpServer,
		server.WithStdioContextFunc(func(reqCtx context.Context) context.Context {
			return tools.WithClient(reqCtx, s.client)
		}))
}

// serveHTTP starts the server in HTTP mode
func (s *Server) serveHTTP(ctx context.Context) error {
	s.logger.Info("Serving via HTTP", "port", s.config.HTTPPort)
	return s.httpServer.Serve(ctx)
}

// GetLogger returns the logger
func (s *Server) GetLogger() *slog.Logger {
	return s.logger
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	return nil
}
