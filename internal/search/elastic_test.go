package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeElastic минимальная имитация REST API Elasticsearch для одного типа документов
type fakeElastic struct {
	mu   sync.Mutex
	docs map[string]map[string]map[string]any
}

func newFakeElastic(t *testing.T) (*fakeElastic, *httptest.Server) {
	t.Helper()
	f := &fakeElastic{docs: map[string]map[string]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeElastic) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case len(parts) == 3 && parts[1] == "_doc" && (r.Method == http.MethodPut || r.Method == http.MethodPost):
		var doc map[string]any
		_ = json.NewDecoder(r.Body).Decode(&doc)
		if f.docs[parts[0]] == nil {
			f.docs[parts[0]] = map[string]map[string]any{}
		}
		f.docs[parts[0]][parts[2]] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))

	case len(parts) == 3 && parts[1] == "_doc" && r.Method == http.MethodDelete:
		if _, ok := f.docs[parts[0]][parts[2]]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
			return
		}
		delete(f.docs[parts[0]], parts[2])
		_, _ = w.Write([]byte(`{"result":"deleted"}`))

	case len(parts) == 2 && parts[1] == "_search":
		index, ok := f.docs[parts[0]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
			return
		}
		var body struct {
			Query struct {
				MultiMatch struct {
					Query  string   `json:"query"`
					Fields []string `json:"fields"`
				} `json:"multi_match"`
			} `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		var hits []string
		for id, doc := range index {
			for _, v := range doc {
				if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), strings.ToLower(body.Query.MultiMatch.Query)) {
					hits = append(hits, id)
					break
				}
			}
		}
		sort.Strings(hits)

		from, _ := strconv.Atoi(r.URL.Query().Get("from"))
		size, err := strconv.Atoi(r.URL.Query().Get("size"))
		if err != nil {
			size = 10
		}
		page := []map[string]any{}
		for i := from; i < len(hits) && i < from+size; i++ {
			page = append(page, map[string]any{"_id": hits[i]})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": len(hits), "relation": "eq"},
				"hits":  page,
			},
		})

	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func TestClient_Unconfigured(t *testing.T) {
	c, err := NewClient("")
	require.NoError(t, err)
	assert.False(t, c.Configured())

	ctx := context.Background()
	assert.NoError(t, c.Add(ctx, "posts", "1", map[string]any{"body": "hello"}))
	assert.NoError(t, c.Remove(ctx, "posts", "1"))

	ids, total, err := c.Query(ctx, "posts", "hello", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, total)
}

func TestClient_AddQueryRemove(t *testing.T) {
	fake, srv := newFakeElastic(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	require.True(t, c.Configured())

	ctx := context.Background()
	require.NoError(t, c.Add(ctx, "posts", "a", map[string]any{"body": "Go is fun"}))
	require.NoError(t, c.Add(ctx, "posts", "b", map[string]any{"body": "gophers everywhere"}))
	require.NoError(t, c.Add(ctx, "posts", "c", map[string]any{"body": "nothing to see"}))
	assert.Len(t, fake.docs["posts"], 3)

	ids, total, err := c.Query(ctx, "posts", "go", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, total, err = c.Query(ctx, "posts", "go", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"b"}, ids)

	require.NoError(t, c.Remove(ctx, "posts", "a"))
	ids, total, err = c.Query(ctx, "posts", "go", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"b"}, ids)
}

func TestClient_RemoveMissingDocument(t *testing.T) {
	_, srv := newFakeElastic(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	assert.NoError(t, c.Remove(context.Background(), "posts", "missing"))
}

func TestClient_QueryMissingIndex(t *testing.T) {
	_, srv := newFakeElastic(t)
	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	ids, total, err := c.Query(context.Background(), "posts", "anything", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Zero(t, total)
}
