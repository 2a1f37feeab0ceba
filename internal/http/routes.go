package http

import (
	"net/http"
	"time"

	"github.com/google/gti-mcp-go/internal/tools"
)

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	// Root endpoint - handles MCP requests when the URL is configured
	// without the /mcp suffix
	s.mux.HandleFunc("/", s.handleRootRequest)

	// Health check endpoints
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)

	// MCP JSON-RPC endpoint
	s.mux.HandleFunc("/mcp", s.handleMCPRequest)

	// Profile-specific endpoints for URL-based routing when MCP_PROFILE
	// is not set
	s.mux.HandleFunc("/mcp/all", s.handleMCPRequest)
	for profile := range tools.ProfileDefinitions {
		s.mux.HandleFunc("/mcp/"+profile, s.handleMCPRequest)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// No external backing services; ready once the API client exists.
	status := "ready"
	statusCode := http.StatusOK
	if s.client == nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	s.writeJSON(w, statusCode, map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleRootRequest handles requests to the root path "/". POSTs are
// treated as MCP requests so clients configured without the /mcp suffix
// still work.
func (s *Server) handleRootRequest(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodPost {
		s.handleMCPRequest(w, r)
		return
	}

	if r.Method == http.MethodGet {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"type":   "gti-mcp-server",
			"status": "ok",
			"endpoints": map[string]string{
				"mcp":    "/mcp",
				"health": "/health",
				"ready":  "/ready",
			},
		})
		return
	}

	s.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
