package files

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gti-mcp-go/internal/gti"
	"github.com/google/gti-mcp-go/internal/tools"
)

const testHash = "275a021bbfb6489e54d471899f7db9d1663fc695ec2fe2a2c4538aabf651fd0f"

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

// fileBackend answers the primary file fetch and all key relationship
// fetches with canned data.
func fileBackend(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files/"+testHash {
			assert.Equal(t, "last_analysis_results", r.URL.Query().Get("exclude_attributes"))
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"type": "file",
					"id":   testHash,
					"attributes": map[string]any{
						"meaningful_name": "dropper.exe",
						"aggregations":    map[string]any{"noise": true},
					},
				},
			})
			return
		}
		if strings.HasPrefix(r.URL.Path, "/files/"+testHash+"/") {
			json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
			return
		}
		t.Errorf("unexpected request path %s", r.URL.Path)
		http.NotFound(w, r)
	})
}

func TestGetFileReport(t *testing.T) {
	reg, ok := tools.GetTool("get_file_report")
	require.True(t, ok)

	t.Run("returns report with key relationships attached", func(t *testing.T) {
		ctx := testContext(t, fileBackend(t))

		result, err := reg.Handler(ctx, map[string]interface{}{"hash": testHash})
		require.NoError(t, err)
		assert.False(t, result.IsError)

		var report map[string]any
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
		assert.Equal(t, testHash, report["id"])
		assert.NotContains(t, report["attributes"].(map[string]any), "aggregations")

		rels := report["relationships"].(map[string]any)
		for _, name := range fileKeyRelationships {
			assert.Contains(t, rels, name)
		}
	})

	t.Run("unknown hash renders structured error", func(t *testing.T) {
		ctx := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": "NotFoundError", "message": "File not found"},
			})
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{"hash": testHash})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "Failed to get main file report:")
	})

	t.Run("missing hash argument", func(t *testing.T) {
		result, err := reg.Handler(context.Background(), map[string]interface{}{})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestGetEntitiesRelatedToAFile(t *testing.T) {
	reg, ok := tools.GetTool("get_entities_related_to_a_file")
	require.True(t, ok)

	t.Run("fetches the requested relationship", func(t *testing.T) {
		ctx := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/files/"+testHash+"/dropped_files", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{
				"data": []any{
					map[string]any{"type": "file", "id": "deadbeef", "attributes": map[string]any{}},
				},
			})
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{
			"hash":              testHash,
			"relationship_name": "dropped_files",
		})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "deadbeef")
	})

	t.Run("unknown relationship fails fast", func(t *testing.T) {
		result, err := reg.Handler(context.Background(), map[string]interface{}{
			"hash":              testHash,
			"relationship_name": "not_a_relationship",
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestGetFileBehaviorSummary(t *testing.T) {
	reg, ok := tools.GetTool("get_file_behavior_summary")
	require.True(t, ok)

	ctx := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/"+testHash+"/behaviour_summary", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"processes_created": []any{"C:\\evil.exe"}},
		})
	}))

	result, err := reg.Handler(ctx, map[string]interface{}{"hash": testHash})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "processes_created")
}

func TestAnalyseFile(t *testing.T) {
	reg, ok := tools.GetTool("analyse_file")
	require.True(t, ok)

	t.Run("uploads, waits and returns the analysis", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sample.bin")
		require.NoError(t, os.WriteFile(path, []byte("MZ payload"), 0o600))

		ctx := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/files":
				require.Equal(t, http.MethodPost, r.Method)
				json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{"type": "analysis", "id": "analysis-42"},
				})
			case "/analyses/analysis-42":
				json.NewEncoder(w).Encode(map[string]any{
					"data": map[string]any{
						"type":       "analysis",
						"id":         "analysis-42",
						"attributes": map[string]any{"status": "completed"},
					},
				})
			default:
				t.Errorf("unexpected request path %s", r.URL.Path)
				http.NotFound(w, r)
			}
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{"file_path": path})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), "analysis-42")
	})

	t.Run("unreadable file is a tool error", func(t *testing.T) {
		ctx := testContext(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no API call expected")
		}))

		result, err := reg.Handler(ctx, map[string]interface{}{
			"file_path": "/nonexistent/sample.bin",
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, resultText(t, result), "failed to open file")
	})
}
