package directus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, WithToken("secret"), WithHTTPClient(srv.Client()), WithUserAgent("test-agent"))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, in := range []string{"", "cms.example.com", "ftp://cms.example.com", "http://"} {
		_, err := NewClient(in)
		assert.ErrorIs(t, err, ErrInvalidConfig, in)
	}
	c, err := NewClient(" https://cms.example.com ", WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, "https://cms.example.com", c.BaseURL())
	assert.Equal(t, 5*time.Second, c.http.Timeout)
}

func TestClient_Items(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/items/articles", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		q := r.URL.Query()
		assert.Equal(t, "id,title", q.Get("fields"))
		assert.JSONEq(t, `{"status":{"_eq":"published"}}`, q.Get("filter"))
		assert.Equal(t, "-date_created,title", q.Get("sort"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "20", q.Get("offset"))
		assert.Equal(t, "go", q.Get("search"))
		writeJSON(w, http.StatusOK, map[string]any{
			"data": []any{map[string]any{"id": 1, "title": "Hello"}},
			"meta": map[string]any{"filter_count": 1},
		})
	})
	resp, err := c.Items(context.Background(), "articles", Query{
		Fields: []string{"id", "title"},
		Filter: map[string]any{"status": map[string]any{"_eq": "published"}},
		Sort:   []string{"-date_created", "title"},
		Limit:  10,
		Offset: 20,
		Search: "go",
	})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"id": float64(1), "title": "Hello"}}, resp.Data)
	assert.Equal(t, map[string]any{"filter_count": float64(1)}, resp.Meta)
}

func TestClient_Items_SystemCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})
	_, err := c.Items(context.Background(), "directus_users", Query{})
	require.NoError(t, err)

	_, err = c.Items(context.Background(), "", Query{})
	require.Error(t, err)
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"errors": []any{
			map[string]any{"message": "You don't have permission to access this.", "extensions": map[string]any{"code": "FORBIDDEN"}},
		}})
	})
	_, err := c.Items(context.Background(), "secret", Query{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "FORBIDDEN", apiErr.Code())
	assert.Equal(t, "directus: 403: You don't have permission to access this.", apiErr.Error())
}

func TestClient_APIError_NoBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Activity(context.Background(), Query{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "", apiErr.Code())
	assert.Equal(t, "directus: 502 Bad Gateway", apiErr.Error())
}

func TestClient_CreateUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"a@b.c","first_name":"Ada","status":"active"}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "u1", "email": "a@b.c"}})
	})
	user, err := c.CreateUser(context.Background(), UserInput{Email: "a@b.c", FirstName: "Ada", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user["id"])

	_, err = c.CreateUser(context.Background(), UserInput{})
	require.Error(t, err)
}

func TestClient_InviteUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/invite", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"a@b.c","role":"r1","invite_url":"https://app/accept"}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.InviteUser(context.Background(), "a@b.c", "r1", "https://app/accept"))
}

func TestClient_TriggerFlow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flows/trigger/f-1", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "42", r.URL.Query().Get("id"))
			assert.JSONEq(t, `{"a":1}`, r.URL.Query().Get("obj"))
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"id":42}`, string(body))
			w.WriteHeader(http.StatusNoContent)
		}
	})
	out, err := c.TriggerFlow(context.Background(), "f-1", "get", map[string]any{"id": 42, "obj": map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, out)

	out, err = c.TriggerFlow(context.Background(), "f-1", "POST", map[string]any{"id": 42})
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = c.TriggerFlow(context.Background(), "f-1", "DELETE", nil)
	require.Error(t, err)
}

func TestClient_PollFlowExecution(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/activity", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("filter"), `"directus_flows"`)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{map[string]any{"id": 9, "action": "run"}}})
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entry, err := c.PollFlowExecution(ctx, "f-1", time.Now(), 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "run", entry["action"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_PollFlowExecution_Deadline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.PollFlowExecution(ctx, "f-1", time.Now(), 5*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestQuery_Values(t *testing.T) {
	v, err := Query{Limit: -1, Meta: "total_count"}.Values()
	require.NoError(t, err)
	assert.Equal(t, "-1", v.Get("limit"))
	assert.Equal(t, "total_count", v.Get("meta"))

	_, err = Query{Filter: map[string]any{"bad": make(chan int)}}.Values()
	require.Error(t, err)
}

func TestCollectionPath(t *testing.T) {
	assert.Equal(t, "/users", collectionPath("directus_users"))
	assert.Equal(t, "/activity", collectionPath("directus_activity"))
	assert.Equal(t, "/items/directus_", collectionPath("directus_"))
	assert.Equal(t, "/items/my%20posts", collectionPath("my posts"))
}

func TestQueryValues(t *testing.T) {
	v := queryValues(map[string]any{
		"id":     "7",
		"n":      42,
		"skip":   nil,
		"tags":   []any{"a", "b"},
		"filter": map[string]any{"x": 1},
		"bad":    []any{math.Inf(1)},
	})
	assert.Equal(t, "7", v.Get("id"))
	assert.Equal(t, "42", v.Get("n"))
	assert.False(t, v.Has("skip"))
	assert.Equal(t, `["a","b"]`, v.Get("tags"))
	assert.Equal(t, `{"x":1}`, v.Get("filter"))
	assert.Equal(t, "[+Inf]", v.Get("bad"))
}
