package gti

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedHandler serves a collection endpoint split into fixed pages, driven
// by the cursor parameter.
func pagedHandler(t *testing.T, pages [][]map[string]any) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := 0
		if cursor := r.URL.Query().Get("cursor"); cursor != "" {
			page = int(cursor[len(cursor)-1] - '0')
		}

		resp := map[string]any{"data": pages[page]}
		if page < len(pages)-1 {
			resp["meta"] = map[string]any{"cursor": "page" + string(rune('1'+page))}
		}
		json.NewEncoder(w).Encode(resp)
	})
}

func objPage(ids ...string) []map[string]any {
	page := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		page = append(page, map[string]any{"type": "file", "id": id, "attributes": map[string]any{}})
	}
	return page
}

func TestIterator(t *testing.T) {
	t.Run("walks pages in order", func(t *testing.T) {
		client := newTestClient(t, pagedHandler(t, [][]map[string]any{
			objPage("a", "b"),
			objPage("c", "d"),
			objPage("e"),
		}))

		it := client.Iterator("files/abc/similar_files", nil, 0)
		var ids []string
		for it.Next(context.Background()) {
			ids = append(ids, it.Object().ID)
		}
		require.NoError(t, it.Err())
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	})

	t.Run("stops at limit", func(t *testing.T) {
		client := newTestClient(t, pagedHandler(t, [][]map[string]any{
			objPage("a", "b"),
			objPage("c", "d"),
		}))

		it := client.Iterator("files/abc/similar_files", nil, 3)
		var ids []string
		for it.Next(context.Background()) {
			ids = append(ids, it.Object().ID)
		}
		require.NoError(t, it.Err())
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})

	t.Run("empty collection", func(t *testing.T) {
		client := newTestClient(t, pagedHandler(t, [][]map[string]any{
			objPage(),
		}))

		it := client.Iterator("files/abc/similar_files", nil, 0)
		assert.False(t, it.Next(context.Background()))
		require.NoError(t, it.Err())
	})

	t.Run("surfaces API errors", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": "QuotaExceededError", "message": "slow down"},
			})
		}))

		it := client.Iterator("files/abc/similar_files", nil, 0)
		assert.False(t, it.Next(context.Background()))
		require.Error(t, it.Err())
	})

	t.Run("CollectIterator preserves order", func(t *testing.T) {
		client := newTestClient(t, pagedHandler(t, [][]map[string]any{
			objPage("x", "y"),
			objPage("z"),
		}))

		objs, err := CollectIterator(context.Background(), client, "urls/u1/redirects_to", nil, 0)
		require.NoError(t, err)
		require.Len(t, objs, 3)
		assert.Equal(t, "x", objs[0].ID)
		assert.Equal(t, "y", objs[1].ID)
		assert.Equal(t, "z", objs[2].ID)
	})
}
