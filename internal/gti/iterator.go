package gti

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Iterator lazily walks a cursor-paginated collection endpoint, fetching
// additional pages transparently as it is consumed. It terminates when the
// collection is exhausted or limit items have been yielded.
//
// Usage follows the bufio.Scanner pattern:
//
//	it := client.Iterator("files/abc/contacted_ips", nil, 10)
//	for it.Next(ctx) {
//	    obj := it.Object()
//	    ...
//	}
//	if err := it.Err(); err != nil {
//	    ...
//	}
type Iterator struct {
	client *Client
	path   string
	params map[string]string
	limit  int

	batch  []*Object
	cursor string
	count  int
	done   bool
	cur    *Object
	err    error
}

// Iterator creates a paginated iterator over a collection endpoint. The
// params are forwarded on every page request. A limit of 0 means no limit.
func (c *Client) Iterator(path string, params map[string]string, limit int) *Iterator {
	p := make(map[string]string, len(params))
	for k, v := range params {
		p[k] = v
	}
	return &Iterator{
		client: c,
		path:   path,
		params: p,
		limit:  limit,
	}
}

// Next advances to the next object, fetching a new page when the current
// one is drained. It returns false at the end of the collection, at the
// limit, or on error.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.limit > 0 && it.count >= it.limit {
		return false
	}

	for len(it.batch) == 0 {
		if it.done {
			return false
		}
		if err := it.fetchPage(ctx); err != nil {
			it.err = err
			return false
		}
	}

	it.cur = it.batch[0]
	it.batch = it.batch[1:]
	it.count++
	return true
}

// Object returns the object Next advanced to.
func (it *Iterator) Object() *Object {
	return it.cur
}

// Err returns the first error encountered during iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

func (it *Iterator) fetchPage(ctx context.Context) error {
	params := make(map[string]string, len(it.params)+2)
	for k, v := range it.params {
		params[k] = v
	}
	if it.cursor != "" {
		params["cursor"] = it.cursor
	}
	if it.limit > 0 {
		params["limit"] = strconv.Itoa(it.limit - it.count)
	}

	resp, err := it.client.get(ctx, it.path, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}

	var objs []*Object
	if err := json.Unmarshal(resp.Data, &objs); err != nil {
		return fmt.Errorf("decode collection page from %s: %w", it.path, err)
	}

	it.batch = objs
	it.cursor = resp.Meta.Cursor
	if it.cursor == "" || len(objs) == 0 {
		it.done = true
	}
	return nil
}
