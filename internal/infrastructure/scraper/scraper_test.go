package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Roasting Guide | Rival Coffee</title></head>
<body>
  <nav>Home About Contact</nav>
  <article>
    <h1>How to Roast Coffee at Home</h1>
    <p>Roasting coffee transforms green beans into aromatic brown ones.</p>
    <p>Light roasts preserve origin flavor. Dark roasts add body.</p>
    <script>trackPageView();</script>
  </article>
  <footer>Copyright Rival Coffee</footer>
</body>
</html>`

func TestFetchText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	s := New(server.Client(), 0)

	title, text, err := s.FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText error: %v", err)
	}

	if title != "Roasting Guide | Rival Coffee" {
		t.Fatalf("unexpected title: %q", title)
	}
	if !strings.Contains(text, "How to Roast Coffee at Home") {
		t.Fatalf("heading missing from text: %q", text)
	}
	if !strings.Contains(text, "green beans") {
		t.Fatalf("paragraph missing from text: %q", text)
	}
	if strings.Contains(text, "trackPageView") {
		t.Fatalf("script content leaked into text: %q", text)
	}
	if strings.Contains(text, "Home About Contact") {
		t.Fatalf("nav content leaked into text: %q", text)
	}
}

func TestFetchTextTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 500)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + long + "</p></body></html>"))
	}))
	defer server.Close()

	s := New(server.Client(), 100)

	_, text, err := s.FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText error: %v", err)
	}
	if len(text) > 100 {
		t.Fatalf("expected truncation to 100 chars, got %d", len(text))
	}
}

func TestFetchTextBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := New(server.Client(), 0)

	if _, _, err := s.FetchText(context.Background(), server.URL); err == nil {
		t.Fatal("expected error on 503")
	}
}
