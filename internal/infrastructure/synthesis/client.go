// Package synthesis implements the content-synthesis contract over an
// OpenAI-compatible chat-completions API.
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ContentPilot/internal/config"
	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
	"ContentPilot/internal/workflow"
)

const (
	planSystemPrompt = "You are an SEO content strategist. Respond with a single JSON object and nothing else."

	articleSystemPrompt = "You are a professional SEO copywriter. Write the full article body in Markdown and nothing else."
)

// Client talks to the external generative service for plan and article
// synthesis.
type Client struct {
	endpoint  string
	model     string
	apiKey    string
	costPer1K float64
	http      *http.Client
}

var _ ports.SynthesisClient = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.SynthesisConfig) *Client {
	return &Client{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		costPer1K: cfg.CostPer1K,
		http:      &http.Client{Timeout: cfg.Timeout()},
	}
}

// Model reports the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// planShape is the strict JSON contract expected from plan synthesis.
type planShape struct {
	Topics []struct {
		Title             string   `json:"title"`
		PrimaryKeyword    string   `json:"primaryKeyword"`
		SecondaryKeywords []string `json:"secondaryKeywords"`
		Outline           []string `json:"outline"`
		TargetWordCount   int      `json:"targetWordCount"`
	} `json:"topics"`
	RecommendedKeywords []string `json:"recommendedKeywords"`
	Competitors         []string `json:"competitors"`
	ContentPillars      []string `json:"contentPillars"`
	ContentGaps         []string `json:"contentGaps"`
	KeywordDifficulty   string   `json:"keywordDifficulty"`
	MarketOpportunities []string `json:"marketOpportunities"`
	TargetAudience      string   `json:"targetAudience"`
	Citations           []struct {
		URL   string `json:"url"`
		Quote string `json:"quote"`
	} `json:"citations"`
}

// SynthesizePlan turns competitor excerpts plus business context into a
// structured topic plan. A response that does not match the expected shape
// (wrong topic count, missing keywords, outline out of bounds) is returned
// as a plain error so the caller can fall back to its deterministic plan.
func (c *Client) SynthesizePlan(ctx context.Context, req ports.PlanRequest) (*domain.ContentPlan, error) {
	prompt, err := buildPlanPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("build plan prompt: %w", err)
	}

	content, cost, err := c.complete(ctx, planSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	var shape planShape
	if err := json.Unmarshal([]byte(extractJSON(content)), &shape); err != nil {
		return nil, fmt.Errorf("plan response not parseable: %w", err)
	}
	if err := validatePlan(shape, req.NumberOfArticles); err != nil {
		return nil, fmt.Errorf("plan response malformed: %w", err)
	}

	plan := &domain.ContentPlan{
		RecommendedKeywords: shape.RecommendedKeywords,
		Competitors:         shape.Competitors,
		ContentPillars:      shape.ContentPillars,
		ContentGaps:         shape.ContentGaps,
		KeywordDifficulty:   shape.KeywordDifficulty,
		MarketOpportunities: shape.MarketOpportunities,
		TargetAudience:      shape.TargetAudience,
		EstimatedCost:       cost,
	}
	for _, t := range shape.Topics {
		wordCount := t.TargetWordCount
		if wordCount <= 0 {
			wordCount = req.MinWordCount
		}
		plan.Topics = append(plan.Topics, domain.Topic{
			Title:             t.Title,
			PrimaryKeyword:    t.PrimaryKeyword,
			SecondaryKeywords: t.SecondaryKeywords,
			Outline:           t.Outline,
			TargetWordCount:   wordCount,
		})
	}
	for _, cit := range shape.Citations {
		plan.Citations = append(plan.Citations, domain.Citation{URL: cit.URL, Quote: cit.Quote})
	}

	return plan, nil
}

// SynthesizeArticle turns one topic into a finished article body. The call
// is all-or-nothing per topic.
func (c *Client) SynthesizeArticle(ctx context.Context, req ports.ArticleRequest) (*domain.GeneratedArticle, error) {
	prompt := buildArticlePrompt(req)

	content, cost, err := c.complete(ctx, articleSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(content)
	if body == "" {
		return nil, fmt.Errorf("article response empty")
	}

	return &domain.GeneratedArticle{
		Title:         req.Topic.Title,
		Body:          body,
		ImagePrompt:   fmt.Sprintf("Editorial illustration for an article titled %q", req.Topic.Title),
		EstimatedCost: cost,
	}, nil
}

// complete performs one chat-completions exchange and returns content plus
// estimated cost.
func (c *Client) complete(ctx context.Context, system, user string) (string, float64, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", 0, fmt.Errorf("%w: synthesis client misconfigured", workflow.ErrAuthentication)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}

	if kindErr := classifyStatus(resp.StatusCode, raw); kindErr != nil {
		return "", 0, kindErr
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		if strings.Contains(parsed.Error.Type, "insufficient_quota") {
			return "", 0, workflow.QuotaError("synthesis")
		}
		return "", 0, fmt.Errorf("synthesis error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", 0, fmt.Errorf("synthesis returned no choices")
	}

	content := parsed.Choices[0].Message.Content
	return content, c.estimateCost(content, parsed.Usage.TotalTokens), nil
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: synthesis rejected credentials", workflow.ErrAuthentication)
	case status == http.StatusPaymentRequired:
		return workflow.QuotaError("synthesis")
	case status == http.StatusTooManyRequests && bytes.Contains(body, []byte("insufficient_quota")):
		return workflow.QuotaError("synthesis")
	case status >= http.StatusBadRequest:
		return fmt.Errorf("synthesis returned %d: %s", status, truncate(string(body), 256))
	default:
		return nil
	}
}

// estimateCost maps response size to dollars: reported token usage when
// present, a chars/4 heuristic otherwise.
func (c *Client) estimateCost(content string, totalTokens int) float64 {
	tokens := totalTokens
	if tokens <= 0 {
		tokens = len(content) / 4
	}
	return float64(tokens) / 1000 * c.costPer1K
}

func buildPlanPrompt(req ports.PlanRequest) (string, error) {
	type snippet struct {
		URL     string `json:"url"`
		Domain  string `json:"domain"`
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
	}

	snippets := make([]snippet, 0, len(req.Competitors))
	for _, comp := range req.Competitors {
		snippets = append(snippets, snippet{
			URL:     comp.URL,
			Domain:  comp.Domain,
			Title:   comp.Title,
			Excerpt: comp.Excerpt,
		})
	}

	contextBlob, err := json.Marshal(map[string]any{
		"business":        req.BusinessDescription,
		"targetCountry":   req.TargetCountry,
		"language":        req.Language,
		"articleCount":    req.NumberOfArticles,
		"minWordCount":    req.MinWordCount,
		"seedKeywords":    req.SeedKeywords,
		"competitorPages": snippets,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Produce a content plan with exactly %d topics. ", req.NumberOfArticles)
	b.WriteString("Each topic needs a primaryKeyword, exactly 3 secondaryKeywords, and an outline of 5 to 8 section headings. ")
	b.WriteString("Return JSON with keys: topics, recommendedKeywords, competitors, contentPillars, contentGaps, keywordDifficulty, marketOpportunities, targetAudience, citations.\n\nContext:\n")
	b.Write(contextBlob)
	return b.String(), nil
}

func buildArticlePrompt(req ports.ArticleRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write an article titled %q targeting the keyword %q.\n", req.Topic.Title, req.Topic.PrimaryKeyword)
	fmt.Fprintf(&b, "Secondary keywords: %s.\n", strings.Join(req.Topic.SecondaryKeywords, ", "))
	fmt.Fprintf(&b, "Follow this outline:\n- %s\n", strings.Join(req.Topic.Outline, "\n- "))
	fmt.Fprintf(&b, "Target length: %d words. Language: %s. Tone: %s.\n", req.Topic.TargetWordCount, req.Language, req.Tone)
	if req.IncludeIntro {
		b.WriteString("Include an introduction.\n")
	}
	if req.IncludeConclusion {
		b.WriteString("Include a conclusion.\n")
	}
	if req.IncludeFAQ {
		b.WriteString("Include a short FAQ section.\n")
	}
	if req.LinkDensity > 0 {
		fmt.Fprintf(&b, "Suggest up to %d outbound link placements per section.\n", req.LinkDensity)
	}
	if len(req.References) > 0 {
		b.WriteString("Reference material:\n")
		for _, ref := range req.References {
			fmt.Fprintf(&b, "- %s: %s\n", ref.URL, truncate(ref.Excerpt, 500))
		}
	}
	return b.String()
}

func validatePlan(shape planShape, wantTopics int) error {
	if len(shape.Topics) != wantTopics {
		return fmt.Errorf("expected %d topics, got %d", wantTopics, len(shape.Topics))
	}
	for i, t := range shape.Topics {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("topic %d has no title", i)
		}
		if strings.TrimSpace(t.PrimaryKeyword) == "" {
			return fmt.Errorf("topic %d has no primary keyword", i)
		}
		if len(t.SecondaryKeywords) != 3 {
			return fmt.Errorf("topic %d has %d secondary keywords", i, len(t.SecondaryKeywords))
		}
		if len(t.Outline) < 5 || len(t.Outline) > 8 {
			return fmt.Errorf("topic %d outline has %d headings", i, len(t.Outline))
		}
	}
	return nil
}

// extractJSON strips Markdown code fences that models wrap around JSON.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
	}
	return strings.TrimSpace(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
