package workflow

import (
	"net/url"
	"sort"
	"strings"

	"ContentPilot/internal/domain"
)

// SelectSources picks at most k competitor results from an unordered pool:
// ascending by rank position (missing position sorts last), one result per
// domain, organic results only, and never a domain that substring-matches
// the campaign's own domain (so sub.example.com is excluded for
// example.com, and vice versa).
func SelectSources(results []domain.SearchResult, ownSite string, k int) []domain.SearchResult {
	if k <= 0 || len(results) == 0 {
		return nil
	}

	sorted := make([]domain.SearchResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return effectivePosition(sorted[i]) < effectivePosition(sorted[j])
	})

	ownDomain := NormalizeDomain(ownSite)
	seen := make(map[string]struct{}, k)
	selected := make([]domain.SearchResult, 0, k)

	for _, res := range sorted {
		if len(selected) == k {
			break
		}
		if res.URL == "" || !res.Organic {
			continue
		}

		dom := NormalizeDomain(res.Domain)
		if dom == "" {
			dom = NormalizeDomain(res.URL)
		}
		if dom == "" {
			continue
		}
		if ownDomain != "" && (strings.Contains(dom, ownDomain) || strings.Contains(ownDomain, dom)) {
			continue
		}
		if _, dup := seen[dom]; dup {
			continue
		}

		seen[dom] = struct{}{}
		selected = append(selected, res)
	}

	return selected
}

func effectivePosition(res domain.SearchResult) int {
	if res.Position <= 0 {
		return int(^uint(0) >> 1)
	}
	return res.Position
}

// NormalizeDomain reduces a URL or bare host to a lowercase host without
// scheme, www prefix, port, or path.
func NormalizeDomain(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}

	host := raw
	if strings.Contains(raw, "://") {
		if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
			host = parsed.Host
		}
	}
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	return strings.TrimPrefix(host, "www.")
}
