package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"maybach_liquor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeElastic répond comme un nœud Elasticsearch minimal
type fakeElastic struct {
	mu   sync.Mutex
	docs map[string]models.Product
	last map[string]interface{}
}

func (f *fakeElastic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/products/_doc/"):
		var p models.Product
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.docs[p.ID] = p
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case r.URL.Path == "/products/_search":
		_ = json.NewDecoder(r.Body).Decode(&f.last)
		hits := []map[string]interface{}{}
		for _, p := range f.docs {
			if strings.Contains(strings.ToLower(p.Name), "macallan") {
				hits = append(hits, map[string]interface{}{"_source": p})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"hits": map[string]interface{}{"hits": hits}})
	default:
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.0"}}`))
	}
}

func TestElasticSearcherIndexAndSearch(t *testing.T) {
	fake := &fakeElastic{docs: map[string]models.Product{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	es, err := NewElasticSearcher(srv.URL, "", "", zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, es.IndexAll(ctx, []models.Product{
		{ID: "1", Name: "Macallan 12 Year"},
		{ID: "2", Name: "Hendrick's Gin"},
	}))
	assert.Len(t, fake.docs, 2)

	got, err := es.Search(ctx, "macalan")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, got)

	query := fake.last["query"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "macalan", query["query"])
}

func TestElasticSearcherReportsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"index_not_found_exception"}`))
	}))
	defer srv.Close()

	es, err := NewElasticSearcher(srv.URL, "", "", zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = es.Search(context.Background(), "gin")
	assert.Error(t, err)
	assert.Error(t, es.Index(context.Background(), models.Product{ID: "1"}))
}
