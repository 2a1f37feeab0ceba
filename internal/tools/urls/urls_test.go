package urls

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gti-mcp-go/internal/gti"
	"github.com/google/gti-mcp-go/internal/tools"
)

func TestURLToBase64(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"no padding needed", "http://a.io/", "aHR0cDovL2EuaW8v"},
		{"padding stripped", "https://example.com", "aHR0cHM6Ly9leGFtcGxlLmNvbQ"},
		{"single pad char stripped", "http://ab.io", "aHR0cDovL2FiLmlv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urlToBase64(tt.url)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "=")
		})
	}
}

func testContext(t *testing.T, handler http.Handler) context.Context {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return tools.WithClient(context.Background(), gti.NewClient("test-key", gti.WithHost(srv.URL)))
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestGetURLReport(t *testing.T) {
	reg, ok := tools.GetTool("get_url_report")
	require.True(t, ok)

	t.Run("fetches by base64 identifier", func(t *testing.T) {
		urlID := urlToBase64("https://example.com")
		ctx := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/urls/" + urlID:
				assert.Equal(t, "last_analysis_results", r.URL.Query().Get("exclude_attributes"))
				json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{
						"type":       "url",
						"id":         urlID,
						"attributes": map[string]any{"title": "Example Domain"},
					},
				})
			case "/urls/" + urlID + "/associations":
				json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
			default:
				t.Errorf("unexpected request path %s", r.URL.Path)
				http.NotFound(w, r)
			}
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{"url": "https://example.com"})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Example Domain")
	})

	t.Run("missing url argument", func(t *testing.T) {
		result, err := reg.Handler(context.Background(), map[string]interface{}{})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestGetEntitiesRelatedToAnURL(t *testing.T) {
	reg, ok := tools.GetTool("get_entities_related_to_an_url")
	require.True(t, ok)

	t.Run("returns only the requested relationship items", func(t *testing.T) {
		urlID := urlToBase64("https://example.com")
		ctx := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/urls/"+urlID+"/contacted_ips", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"data": []any{
					map[string]any{"type": "ip_address", "id": "1.2.3.4", "attributes": map[string]any{}},
				},
			})
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{
			"url":               "https://example.com",
			"relationship_name": "contacted_ips",
		})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "1.2.3.4")
	})

	t.Run("rejects unknown relationship without calling the API", func(t *testing.T) {
		ctx := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no API call expected")
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{
			"url":               "https://example.com",
			"relationship_name": "bogus_relationship",
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Available relationships are:")
	})
}
