package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"marketsearch/internal/search"
)

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

type stubProvider struct {
	results  []any
	err      error
	defaults search.Defaults
	lastReq  search.Request
	calls    int
}

func (s *stubProvider) Search(ctx context.Context, req search.Request) ([]any, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubProvider) Defaults() search.Defaults {
	return s.defaults
}

func newSearchRouter(emb *stubEmbedder, prov *stubProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &SearchHandler{Embedder: emb, Provider: prov}
	h.Register(r)
	return r
}

func doSearch(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchEmptyQuery(t *testing.T) {
	emb := &stubEmbedder{vector: []float32{0.1}}
	prov := &stubProvider{defaults: search.Defaults{Limit: 5, MinSimilarity: 0.5, MarketsPerEvent: 3}}
	r := newSearchRouter(emb, prov)

	for _, body := range []string{`{"query":""}`, `{"query":"   "}`, `{}`} {
		w := doSearch(t, r, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, w.Code)
		}
	}
	if emb.calls != 0 {
		t.Fatalf("embedder called %d times for empty queries", emb.calls)
	}
	if prov.calls != 0 {
		t.Fatalf("provider called %d times for empty queries", prov.calls)
	}
}

func TestSearchInvalidBody(t *testing.T) {
	r := newSearchRouter(&stubEmbedder{}, &stubProvider{})
	w := doSearch(t, r, `{"query":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["detail"] == "" {
		t.Fatalf("missing detail in %s", w.Body.String())
	}
}

func TestSearchEmbedFailure(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("upstream timeout")}
	prov := &stubProvider{}
	r := newSearchRouter(emb, prov)

	w := doSearch(t, r, `{"query":"fed rate"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !strings.HasPrefix(resp["detail"], "failed to embed query:") {
		t.Fatalf("detail = %q", resp["detail"])
	}
	if prov.calls != 0 {
		t.Fatalf("provider called after embed failure")
	}
}

func TestSearchBackendMissing(t *testing.T) {
	emb := &stubEmbedder{vector: []float32{0.1}}
	prov := &stubProvider{err: &search.RemoteError{
		Op:  "match_markets",
		Err: errors.New(`function match_markets(vector, integer) does not exist`),
	}}
	r := newSearchRouter(emb, prov)

	w := doSearch(t, r, `{"query":"fed rate"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "search backend unavailable") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSearchRemoteError(t *testing.T) {
	emb := &stubEmbedder{vector: []float32{0.1}}
	prov := &stubProvider{err: &search.RemoteError{Op: "search", Err: errors.New("connection reset")}}
	r := newSearchRouter(emb, prov)

	w := doSearch(t, r, `{"query":"fed rate"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "database query failed") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSearchEmptyResults(t *testing.T) {
	emb := &stubEmbedder{vector: []float32{0.1}}
	prov := &stubProvider{results: nil, defaults: search.Defaults{Limit: 5, MinSimilarity: 0.5}}
	r := newSearchRouter(emb, prov)

	w := doSearch(t, r, `{"query":"fed rate"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Query   string `json:"query"`
		Results []any  `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Query != "fed rate" {
		t.Fatalf("query = %q", resp.Query)
	}
	if resp.Results == nil {
		t.Fatalf("results missing or null: %s", w.Body.String())
	}
	if len(resp.Results) != 0 {
		t.Fatalf("results = %v, want empty", resp.Results)
	}
}

func TestSearchDefaultsApplied(t *testing.T) {
	emb := &stubEmbedder{vector: []float32{0.1, 0.2}}
	prov := &stubProvider{
		results:  []any{},
		defaults: search.Defaults{Limit: 5, MinSimilarity: 0.5, MarketsPerEvent: 3},
	}
	r := newSearchRouter(emb, prov)

	w := doSearch(t, r, `{"query":"fed rate"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	got := prov.lastReq
	if got.Limit != 5 || got.MinSimilarity != 0.5 || got.MarketsPerEvent != 3 {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if len(got.Embedding) != 2 {
		t.Fatalf("embedding not forwarded: %v", got.Embedding)
	}
}

func TestSearchOverridesApplied(t *testing.T) {
	emb := &stubEmbedder{vector: []float32{0.1}}
	prov := &stubProvider{
		results:  []any{},
		defaults: search.Defaults{Limit: 5, MinSimilarity: 0.5, MarketsPerEvent: 3},
	}
	r := newSearchRouter(emb, prov)

	w := doSearch(t, r, `{"query":"fed rate","limit":20,"min_similarity":0.1,"markets_per_event":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	got := prov.lastReq
	if got.Limit != 20 || got.MinSimilarity != 0.1 || got.MarketsPerEvent != 7 {
		t.Fatalf("overrides not applied: %+v", got)
	}
}

func TestSearchZeroMinSimilarityOverride(t *testing.T) {
	emb := &stubEmbedder{vector: []float32{0.1}}
	prov := &stubProvider{
		results:  []any{},
		defaults: search.Defaults{Limit: 5, MinSimilarity: 0.5, MarketsPerEvent: 3},
	}
	r := newSearchRouter(emb, prov)

	w := doSearch(t, r, `{"query":"fed rate","min_similarity":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if prov.lastReq.MinSimilarity != 0 {
		t.Fatalf("min_similarity = %v, want explicit 0", prov.lastReq.MinSimilarity)
	}
}
