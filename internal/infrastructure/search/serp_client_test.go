package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ContentPilot/internal/workflow"
)

const sampleResponse = `{
  "organic_results": [
    {"link": "https://rival.com/post", "domain": "rival.com", "title": "Rival post", "position": 1},
    {"link": "https://third.com/post", "domain": "third.com", "title": "Third post", "position": 2}
  ],
  "paid_results": [
    {"link": "https://ads.com/buy", "domain": "ads.com", "title": "Sponsored", "position": 1}
  ]
}`

func TestSearch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "artisan coffee" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("location"); got != "singapore" {
			t.Errorf("unexpected location %q", got)
		}
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	results, err := client.Search(context.Background(), "artisan coffee", "singapore")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Organic || !results[1].Organic {
		t.Fatal("organic results not flagged organic")
	}
	if results[2].Organic {
		t.Fatal("paid result flagged organic")
	}
	if results[0].Position != 1 || results[0].Domain != "rival.com" {
		t.Fatalf("unexpected first result %+v", results[0])
	}
}

func TestSearchAuthFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "bad").Search(context.Background(), "coffee", "")
	if !errors.Is(err, workflow.ErrAuthentication) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestSearchQuotaFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "key").Search(context.Background(), "coffee", "")
	if !errors.Is(err, workflow.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}
