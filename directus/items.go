package directus

import (
	"context"
	"errors"
	"net/http"
)

// Items reads items of a collection.
func (c *Client) Items(ctx context.Context, collection string, q Query) (*Response, error) {
	if collection == "" {
		return nil, errors.New("directus: collection is required")
	}
	values, err := q.Values()
	if err != nil {
		return nil, err
	}
	var out Response
	if err := c.do(ctx, http.MethodGet, collectionPath(collection), values, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Activity reads the activity log.
func (c *Client) Activity(ctx context.Context, q Query) (*Response, error) {
	values, err := q.Values()
	if err != nil {
		return nil, err
	}
	var out Response
	if err := c.do(ctx, http.MethodGet, "/activity", values, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
