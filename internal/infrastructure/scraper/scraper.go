// Package scraper extracts readable text from web pages.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentPilot/internal/ports"
)

// Scraper pulls the title and main text content out of a page, bounded by a
// maximum excerpt size.
type Scraper struct {
	client   *http.Client
	maxChars int
}

var _ ports.PageFetcher = (*Scraper)(nil)

// New wires an HTTP client; maxChars defaults to 4000.
func New(client *http.Client, maxChars int) *Scraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxChars <= 0 {
		maxChars = 4000
	}
	return &Scraper{client: client, maxChars: maxChars}
}

// FetchText downloads the page and returns its title plus a truncated text
// excerpt with boilerplate elements stripped.
func (s *Scraper) FetchText(ctx context.Context, pageURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentPilot/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("parse page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && title == "" {
		title = strings.TrimSpace(og)
	}

	doc.Find("script, style, nav, header, footer, aside, form, noscript").Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var builder strings.Builder
	root.Find("h1, h2, h3, p, li").Each(func(i int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	})

	text := builder.String()
	if text == "" {
		text = strings.TrimSpace(root.Text())
	}
	text = collapseWhitespace(text)
	if len(text) > s.maxChars {
		text = text[:s.maxChars]
	}

	return title, text, nil
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
