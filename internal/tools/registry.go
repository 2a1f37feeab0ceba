// Package tools provides the MCP tool registry and shared utilities for
// tool development. Tool packages register themselves through init() and
// the server exposes the subset selected by the configured profile.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolHandler is the function signature for MCP tool handlers
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// ToolRegistration holds a tool's metadata and handler
type ToolRegistration struct {
	Name        string
	Description string
	Handler     ToolHandler
	Schema      mcp.Tool
	Profile     string
}

// Global tool registry
var registry = make(map[string]*ToolRegistration)

// ProfileDefinitions maps each exposable profile to its tool names.
var ProfileDefinitions = map[string][]string{
	"threat_reports": {
		"get_file_report",
		"get_entities_related_to_a_file",
		"get_file_behavior_report",
		"get_file_behavior_summary",
		"get_domain_report",
		"get_entities_related_to_a_domain",
		"get_ip_address_report",
		"get_entities_related_to_an_ip_address",
		"get_url_report",
		"get_entities_related_to_an_url",
		"get_collection_report",
		"get_entities_related_to_a_collection",
		"get_collection_timeline_events",
		"get_collection_mitre_tree",
	},
	"threat_hunting": {
		"search_threats",
		"search_campaigns",
		"search_threat_actors",
		"search_malware_families",
		"search_software_toolkits",
		"search_threat_reports",
		"search_vulnerabilities",
		"search_iocs",
		// Pivoting from search hits to full reports
		"get_collection_report",
		"get_entities_related_to_a_collection",
		"get_collection_timeline_events",
		"get_collection_mitre_tree",
	},
	"scanning": {
		"analyse_file",
		"get_file_report",
		"get_file_behavior_report",
		"get_file_behavior_summary",
	},
}

// RegisterTool adds a tool to the registry
func RegisterTool(reg *ToolRegistration) {
	registry[reg.Name] = reg
}

// GetTool retrieves a tool from the registry
func GetTool(name string) (*ToolRegistration, bool) {
	tool, ok := registry[name]
	return tool, ok
}

// GetToolsForProfile returns all tool names for a given profile
func GetToolsForProfile(profile string) []string {
	if profile == "all" {
		// Return all tools from all profiles
		allTools := make(map[string]bool)
		for _, tools := range ProfileDefinitions {
			for _, tool := range tools {
				allTools[tool] = true
			}
		}
		result := make([]string, 0, len(allTools))
		for tool := range allTools {
			result = append(result, tool)
		}
		return result
	}

	tools, ok := ProfileDefinitions[profile]
	if !ok {
		return []string{}
	}
	return tools
}

// AddToolsToServer adds all tools for a profile to an MCP server
func AddToolsToServer(s *server.MCPServer, profile string, logger *slog.Logger) error {
	toolNames := GetToolsForProfile(profile)

	for _, name := range toolNames {
		reg, ok := GetTool(name)
		if !ok {
			// Tool not implemented yet - skip silently
			continue
		}

		s.AddTool(reg.Schema, wrapHandler(reg, logger))
	}

	return nil
}

// wrapHandler converts our ToolHandler to mcp-go's expected signature and
// adds per-call duration logging.
func wrapHandler(reg *ToolRegistration, logger *slog.Logger) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		start := time.Now()
		result, err := reg.Handler(ctx, args)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "Tool call failed",
				"tool", reg.Name, "duration_ms", duration.Milliseconds(), "error", err)
			return result, err
		}

		logger.DebugContext(ctx, "Tool call completed",
			"tool", reg.Name, "duration_ms", duration.Milliseconds())
		return result, nil
	}
}

// Helper functions for creating tool results

// ToJSON converts a value to JSON string without HTML escaping
func ToJSON(v interface{}) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false) // Prevent &, <, > from being escaped as &, <, >
	if err := encoder.Encode(v); err != nil {
		return fmt.Sprintf("{\"error\": \"failed to marshal JSON: %v\"}", err)
	}

	// encoder.Encode() adds a trailing newline, trim it
	return strings.TrimSuffix(buf.String(), "\n")
}

// SuccessResult creates a successful tool result
func SuccessResult(data interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultText(ToJSON(data))
}

// ErrorResult creates an error tool result
func ErrorResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// ErrorResultf creates an error tool result with formatting
func ErrorResultf(format string, args ...interface{}) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}
