package directus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TriggerFlow calls the webhook trigger of a flow. For GET the payload is sent
// as query parameters, for POST as the JSON body. The decoded response body
// is returned as-is (flows may answer with any JSON, or nothing).
func (c *Client) TriggerFlow(ctx context.Context, flowID, method string, payload map[string]any) (any, error) {
	if flowID == "" {
		return nil, errors.New("directus: flow id is required")
	}
	method = strings.ToUpper(method)
	path := "/flows/trigger/" + url.PathEscape(flowID)
	var out any
	switch method {
	case http.MethodGet:
		if err := c.do(ctx, method, path, queryValues(payload), nil, &out); err != nil {
			return nil, err
		}
	case http.MethodPost, "":
		var body any = payload
		if payload == nil {
			body = map[string]any{}
		}
		if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("directus: unsupported flow trigger method %q", method)
	}
	return out, nil
}

func queryValues(payload map[string]any) url.Values {
	v := url.Values{}
	for k, val := range payload {
		switch x := val.(type) {
		case nil:
		case string:
			v.Set(k, x)
		case map[string]any, []any:
			b, err := json.Marshal(x)
			if err != nil {
				v.Set(k, fmt.Sprint(x))
				continue
			}
			v.Set(k, string(b))
		default:
			v.Set(k, fmt.Sprint(x))
		}
	}
	return v
}

// PollFlowExecution waits for a "run" activity entry of the flow recorded at
// or after since. It polls every interval until a match, an API error or ctx
// expiry; ctx must carry a deadline to bound the wait.
func (c *Client) PollFlowExecution(ctx context.Context, flowID string, since time.Time, interval time.Duration) (map[string]any, error) {
	if interval <= 0 {
		interval = time.Second
	}
	q := Query{
		Filter: map[string]any{"_and": []any{
			map[string]any{"action": map[string]any{"_eq": "run"}},
			map[string]any{"collection": map[string]any{"_eq": "directus_flows"}},
			map[string]any{"item": map[string]any{"_eq": flowID}},
			map[string]any{"timestamp": map[string]any{"_gte": since.UTC().Format(time.RFC3339)}},
		}},
		Sort:  []string{"-timestamp"},
		Limit: 1,
	}
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("directus: waiting for flow %s: %w", flowID, ctx.Err())
		case <-timer.C:
		}
		resp, err := c.Activity(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("directus: waiting for flow %s: %w", flowID, ctx.Err())
			}
			return nil, err
		}
		if entries, ok := resp.Data.([]any); ok && len(entries) > 0 {
			if entry, ok := entries[0].(map[string]any); ok {
				return entry, nil
			}
		}
		timer.Reset(interval)
	}
}
