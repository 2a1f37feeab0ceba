// Package http implements the HTTP transport: a JSON-RPC 2.0 endpoint
// speaking the MCP protocol, plus health endpoints, behind a middleware
// chain for logging, recovery, CORS and rate limiting.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/gti-mcp-go/internal/config"
	"github.com/google/gti-mcp-go/internal/gti"
	"github.com/google/gti-mcp-go/internal/ratelimit"
	"github.com/google/gti-mcp-go/internal/tools"
)

// Server is the HTTP server for MCP over JSON-RPC.
type Server struct {
	config      *config.Config
	logger      *slog.Logger
	mux         *http.ServeMux
	server      *http.Server
	client      *gti.Client
	rateLimiter *ratelimit.Limiter
	profile     string
}

// New creates an HTTP server exposing the tools of the configured profile.
func New(cfg *config.Config, logger *slog.Logger, client *gti.Client) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("API client is required")
	}

	mux := http.NewServeMux()

	s := &Server{
		config:      cfg,
		logger:      logger,
		mux:         mux,
		client:      client,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimitRPM, logger),
		profile:     cfg.Profile,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           s.withMiddleware(mux),
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute, // relationship fan-outs can take a while
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	logger.Info("HTTP server initialized", "port", cfg.HTTPPort, "profile", cfg.Profile)

	return s, nil
}

// getActiveProfile determines the profile for a request. An explicitly
// configured MCP_PROFILE takes precedence; otherwise the profile comes
// from the URL path (/mcp/<profile>).
func (s *Server) getActiveProfile(r *http.Request) string {
	if s.profile != "" && s.profile != "all" {
		return s.profile
	}

	path := r.URL.Path
	if path == "/" || path == "/mcp" {
		return "all"
	}

	profile := strings.TrimPrefix(path, "/mcp/")
	if _, exists := tools.ProfileDefinitions[profile]; exists {
		return profile
	}
	if profile == "all" {
		return "all"
	}

	s.logger.Warn("Invalid profile in URL path, defaulting to 'all'", "path", path, "profile", profile)
	return "all"
}

// Serve starts the HTTP server and blocks until the context is cancelled
// or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", "port", s.config.HTTPPort)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		s.logger.Info("HTTP server stopped gracefully")
		return nil

	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// writeJSONRPCSuccess writes a successful JSON-RPC 2.0 response.
func (s *Server) writeJSONRPCSuccess(w http.ResponseWriter, id interface{}, result interface{}) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

// writeJSONRPCError writes a JSON-RPC 2.0 error response.
func (s *Server) writeJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data string) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
	})
}
