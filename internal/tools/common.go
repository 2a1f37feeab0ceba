package tools

import (
	"context"
	"fmt"

	"github.com/google/gti-mcp-go/internal/gti"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

// clientKey is the context key for the shared *gti.Client. The server
// injects the client into every request context; tests inject their own.
const clientKey contextKey = "gti-client"

// GetClient retrieves the API client from context.
// This is the shared helper every tool uses to reach the platform.
func GetClient(ctx context.Context) (*gti.Client, error) {
	if c, ok := ctx.Value(clientKey).(*gti.Client); ok && c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("no API client in context")
}

// WithClient adds a *gti.Client to the context. Used by the server for
// each request, and by tests to inject clients pointed at mock backends.
func WithClient(ctx context.Context, client *gti.Client) context.Context {
	return context.WithValue(ctx, clientKey, client)
}
