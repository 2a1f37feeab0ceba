package intelligence

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

func TestSearchIOCs(t *testing.T) {
	reg, ok := tools.GetTool("search_iocs")
	require.True(t, ok)

	newCtx := func(t *testing.T, handler http.Handler) context.Context {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		return tools.WithClient(context.Background(), gti.NewClient("test-key", gti.WithHost(srv.URL)))
	}

	t.Run("forwards query and default order", func(t *testing.T) {
		var gotQuery, gotOrder string
		ctx := newCtx(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/intelligence/search", r.URL.Path)
			gotQuery = r.URL.Query().Get("query")
			gotOrder = r.URL.Query().Get("order")
			json.NewEncoder(w).Encode(map[string]any{
				"data": []any{
					map[string]any{"type": "file", "id": "f1", "attributes": map[string]any{"positives": float64(42)}},
					map[string]any{"type": "url", "id": "u1", "attributes": map[string]any{}},
				},
			})
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{
			"query": "entity:file p:60+ tag:ransomware",
		})
		require.NoError(t, err)
		assert.False(t, result.IsError)

		assert.Equal(t, "entity:file p:60+ tag:ransomware", gotQuery)
		assert.Equal(t, "last_submission_date-", gotOrder)

		text := result.Content[0].(mcp.TextContent).Text
		var items []map[string]any
		require.NoError(t, json.Unmarshal([]byte(text), &items))
		require.Len(t, items, 2)
		assert.Equal(t, "f1", items[0]["id"])
		assert.Equal(t, "u1", items[1]["id"])
	})

	t.Run("custom order passes through", func(t *testing.T) {
		var gotOrder string
		ctx := newCtx(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotOrder = r.URL.Query().Get("order")
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{
			"query":    "entity:ip",
			"order_by": "positives-",
		})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, "positives-", gotOrder)
	})

	t.Run("missing query", func(t *testing.T) {
		result, err := reg.Handler(context.Background(), map[string]interface{}{})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
