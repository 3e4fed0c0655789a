package workflow

import (
	"testing"

	"ContentPilot/internal/domain"
)

func TestSelectSourcesDeduplicatesDomains(t *testing.T) {
	t.Parallel()

	pool := []domain.SearchResult{
		{URL: "https://a.com/1", Domain: "a.com", Position: 1, Organic: true},
		{URL: "https://a.com/2", Domain: "a.com", Position: 2, Organic: true},
		{URL: "https://b.com/1", Domain: "b.com", Position: 3, Organic: true},
	}

	selected := SelectSources(pool, "https://mine.com", 5)

	if len(selected) != 2 {
		t.Fatalf("expected 2 results, got %d", len(selected))
	}

	seen := map[string]bool{}
	for _, res := range selected {
		if seen[res.Domain] {
			t.Fatalf("duplicate domain %s in selection", res.Domain)
		}
		seen[res.Domain] = true
	}
}

func TestSelectSourcesExcludesOwnDomainSubstring(t *testing.T) {
	t.Parallel()

	pool := []domain.SearchResult{
		{URL: "https://sub.example.com/post", Domain: "sub.example.com", Position: 1, Organic: true},
		{URL: "https://example.com/post", Domain: "example.com", Position: 2, Organic: true},
		{URL: "https://other.com/post", Domain: "other.com", Position: 3, Organic: true},
	}

	selected := SelectSources(pool, "https://example.com", 5)

	if len(selected) != 1 {
		t.Fatalf("expected 1 result, got %d", len(selected))
	}
	if selected[0].Domain != "other.com" {
		t.Fatalf("expected other.com, got %s", selected[0].Domain)
	}
}

func TestSelectSourcesRespectsRankOrderAndBound(t *testing.T) {
	t.Parallel()

	pool := []domain.SearchResult{
		{URL: "https://c.com", Domain: "c.com", Position: 9, Organic: true},
		{URL: "https://a.com", Domain: "a.com", Position: 1, Organic: true},
		{URL: "https://d.com", Domain: "d.com", Organic: true}, // no position sorts last
		{URL: "https://b.com", Domain: "b.com", Position: 4, Organic: true},
	}

	selected := SelectSources(pool, "", 3)

	if len(selected) != 3 {
		t.Fatalf("expected 3 results, got %d", len(selected))
	}
	want := []string{"a.com", "b.com", "c.com"}
	for i, dom := range want {
		if selected[i].Domain != dom {
			t.Fatalf("position %d: expected %s, got %s", i, dom, selected[i].Domain)
		}
	}
}

func TestSelectSourcesRejectsPaidAndEmptyURL(t *testing.T) {
	t.Parallel()

	pool := []domain.SearchResult{
		{URL: "https://ad.com", Domain: "ad.com", Position: 1, Organic: false},
		{URL: "", Domain: "ghost.com", Position: 2, Organic: true},
		{URL: "https://real.com", Domain: "real.com", Position: 3, Organic: true},
	}

	selected := SelectSources(pool, "", 5)

	if len(selected) != 1 {
		t.Fatalf("expected 1 result, got %d", len(selected))
	}
	if selected[0].Domain != "real.com" {
		t.Fatalf("expected real.com, got %s", selected[0].Domain)
	}
}

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://www.Example.com/path?q=1": "example.com",
		"example.com:8080":                 "example.com",
		"WWW.Sub.Example.com":              "sub.example.com",
		"":                                 "",
	}

	for input, want := range cases {
		if got := NormalizeDomain(input); got != want {
			t.Fatalf("NormalizeDomain(%q) = %q, want %q", input, got, want)
		}
	}
}
