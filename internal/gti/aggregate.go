package gti

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// CollectIterator drains a paginated collection endpoint into a slice,
// preserving the iterator's yield order. A limit of 0 drains to exhaustion.
func CollectIterator(ctx context.Context, c *Client, path string, params map[string]string, limit int) ([]*Object, error) {
	it := c.Iterator(path, params, limit)
	var objs []*Object
	for it.Next(ctx) {
		objs = append(objs, it.Object())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return objs, nil
}

// FetchObject fetches a comprehensive report for one resource: the primary
// object at {resourceCollectionType}/{resourceID} plus the requested
// relationships, merged into a single dict with top-level "id",
// "attributes" and "relationships" keys.
//
// An object-level API error on the primary fetch produces a structured
// {"error": ...} result with a nil Go error, and no relationship fetch is
// issued. Transport failures, on the primary fetch or on any relationship
// fetch, are returned as errors.
func FetchObject(ctx context.Context, c *Client, resourceCollectionType, resourceType, resourceID string, relationships []string, params map[string]string) (map[string]any, error) {
	c.logger.InfoContext(ctx, "Fetching comprehensive report",
		"collection", resourceCollectionType, "id", resourceID)

	obj, err := c.GetObject(ctx, fmt.Sprintf("%s/%s", resourceCollectionType, resourceID), params)
	if err != nil {
		return nil, err
	}
	if obj.Error != nil {
		c.logger.ErrorContext(ctx, "Error fetching main report",
			"type", resourceType, "id", resourceID, "error", obj.Error)
		return map[string]any{
			"error": fmt.Sprintf("Failed to get main %s report: %v", resourceType, obj.Error),
		}, nil
	}

	objDict := obj.ToDict()
	objDict["id"] = obj.ID
	stripAggregations(objDict)

	rels, err := FetchObjectRelationships(ctx, c, resourceCollectionType, resourceID, relationships, params, 0)
	if err != nil {
		return nil, err
	}
	objDict["relationships"] = rels

	c.logger.InfoContext(ctx, "Report assembled", "id", resourceID)
	return objDict, nil
}

// FetchObjectRelationships fetches the given relationships of one object
// concurrently and returns them keyed by relationship name. Duplicate names
// are collapsed, fetching once per distinct name; the result holds exactly
// one (possibly empty) entry per distinct name. Item order within each
// relationship is the source iterator's yield order.
//
// The fetches run as a group: the first failure cancels the remaining
// in-flight fetches and fails the whole call. No partial results are
// returned. A limit of 0 drains each relationship fully.
func FetchObjectRelationships(ctx context.Context, c *Client, resourceCollectionType, resourceID string, relationships []string, params map[string]string, limit int) (map[string][]map[string]any, error) {
	names := dedupeNames(relationships)
	data := make(map[string][]map[string]any, len(names))
	if len(names) == 0 {
		return data, nil
	}

	// Each fetch writes only its own slot, so the merge below needs no
	// locking.
	results := make([][]*Object, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			path := fmt.Sprintf("%s/%s/%s", resourceCollectionType, resourceID, name)
			objs, err := CollectIterator(gctx, c, path, params, limit)
			if err != nil {
				return fmt.Errorf("fetch relationship %s: %w", name, err)
			}
			results[i] = objs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, name := range names {
		items := make([]map[string]any, 0, len(results[i]))
		for _, obj := range results[i] {
			d := obj.ToDict()
			stripAggregations(d)
			items = append(items, d)
		}
		data[name] = items
	}
	return data, nil
}

// stripAggregations removes the "aggregations" attribute key, if present,
// from an object dict. Applied to every object before it is returned.
func stripAggregations(d map[string]any) {
	if attrs, ok := d["attributes"].(map[string]any); ok {
		delete(attrs, "aggregations")
	}
}

// dedupeNames collapses duplicate relationship names, preserving first
// occurrence order.
func dedupeNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
