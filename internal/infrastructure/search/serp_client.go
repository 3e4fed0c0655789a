// Package search implements the SERP provider over a JSON HTTP API.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
	"ContentPilot/internal/workflow"
)

// Client queries an external search API for organic keyword results.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.SearchProvider = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type serpResult struct {
	Link     string `json:"link"`
	Domain   string `json:"domain"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Type     string `json:"type"`
}

type serpResponse struct {
	Organic []serpResult `json:"organic_results"`
	Paid    []serpResult `json:"paid_results"`
}

// Search runs one keyword query. Paid placements are carried through with
// the organic flag cleared so the selector can reject them.
func (c *Client) Search(ctx context.Context, keyword, location string) ([]domain.SearchResult, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("search client misconfigured")
	}

	query := url.Values{}
	query.Set("q", keyword)
	if location != "" {
		query.Set("location", location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: search provider rejected credentials", workflow.ErrAuthentication)
	case http.StatusPaymentRequired:
		return nil, workflow.QuotaError("search provider")
	default:
		return nil, fmt.Errorf("search provider returned %s", resp.Status)
	}

	var parsed serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(parsed.Organic)+len(parsed.Paid))
	for _, r := range parsed.Organic {
		results = append(results, toResult(r, r.Type != "ad"))
	}
	for _, r := range parsed.Paid {
		results = append(results, toResult(r, false))
	}

	return results, nil
}

func toResult(r serpResult, organic bool) domain.SearchResult {
	return domain.SearchResult{
		URL:      r.Link,
		Domain:   r.Domain,
		Title:    r.Title,
		Position: r.Position,
		Organic:  organic,
	}
}
