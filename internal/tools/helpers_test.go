package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gti-mcp-go/internal/gti"
)

func TestRequiredString(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		v, err := RequiredString(map[string]interface{}{"hash": "abc"}, "hash")
		require.NoError(t, err)
		assert.Equal(t, "abc", v)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := RequiredString(map[string]interface{}{}, "hash")
		require.Error(t, err)
		assert.Equal(t, "hash parameter is required", err.Error())
	})

	t.Run("empty string", func(t *testing.T) {
		_, err := RequiredString(map[string]interface{}{"hash": ""}, "hash")
		assert.Error(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := RequiredString(map[string]interface{}{"hash": 42.0}, "hash")
		assert.Error(t, err)
	})
}

func TestOptionalArguments(t *testing.T) {
	t.Run("optional string default", func(t *testing.T) {
		assert.Equal(t, "relevance-", OptionalString(nil, "order_by", "relevance-"))
		assert.Equal(t, "date+", OptionalString(map[string]interface{}{"order_by": "date+"}, "order_by", "relevance-"))
	})

	t.Run("optional int decodes JSON numbers", func(t *testing.T) {
		assert.Equal(t, 10, OptionalInt(nil, "limit", 10))
		assert.Equal(t, 25, OptionalInt(map[string]interface{}{"limit": 25.0}, "limit", 10))
		assert.Equal(t, 10, OptionalInt(map[string]interface{}{"limit": "25"}, "limit", 10))
	})
}

func TestValidateRelationship(t *testing.T) {
	available := []string{"contacted_domains", "contacted_ips"}

	t.Run("known relationship", func(t *testing.T) {
		assert.NoError(t, ValidateRelationship("contacted_ips", available))
	})

	t.Run("unknown relationship lists alternatives", func(t *testing.T) {
		err := ValidateRelationship("dropped_files", available)
		require.Error(t, err)
		assert.Equal(t,
			"Relationship dropped_files does not exist. Available relationships are: contacted_domains,contacted_ips",
			err.Error())
	})
}

func TestClientContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		client := gti.NewClient("key")
		ctx := WithClient(context.Background(), client)

		got, err := GetClient(ctx)
		require.NoError(t, err)
		assert.Same(t, client, got)
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := GetClient(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no API client in context")
	})
}
