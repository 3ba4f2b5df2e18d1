package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSearchSendsConfiguredOptions(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("auth header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Error(err)
		}
		_, _ = w.Write([]byte(`{"query":"q","results":[]}`))
	}))
	defer srv.Close()

	c := NewClientWithHTTP("key", "advanced", srv.Client())
	c.SetEndpoints(srv.URL, srv.URL)

	_, err := c.Search(context.Background(), "q", SearchOptions{
		MaxResults:     7,
		IncludeAnswer:  true,
		IncludeDomains: []string{"wikipedia.org"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if body["search_depth"] != "advanced" {
		t.Fatalf("search_depth = %v, want client default", body["search_depth"])
	}
	if body["max_results"] != float64(7) || body["include_answer"] != true {
		t.Fatalf("options not forwarded: %v", body)
	}
	if _, ok := body["exclude_domains"]; ok {
		t.Fatal("empty exclude_domains should be omitted")
	}
}

func TestExtractRequiresURLs(t *testing.T) {
	c := NewClient("key", "")
	if _, err := c.Extract(context.Background(), nil, ExtractOptions{}); err == nil {
		t.Fatal("extract with no URLs must fail")
	}
}

func TestPostRetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"query":"q","results":[]}`))
	}))
	defer srv.Close()

	c := NewClientWithHTTP("key", "", srv.Client())
	c.SetEndpoints(srv.URL, srv.URL)

	if _, err := c.Search(context.Background(), "q", SearchOptions{}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want retry after 429", calls.Load())
	}
}

func TestMissingAPIKeyFailsFast(t *testing.T) {
	c := NewClient(" ", "")
	if _, err := c.Search(context.Background(), "q", SearchOptions{}); err == nil {
		t.Fatal("blank API key must fail before any request")
	}
}
