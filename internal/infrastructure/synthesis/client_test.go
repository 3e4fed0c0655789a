package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ContentPilot/internal/config"
	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
	"ContentPilot/internal/workflow"
)

func workflowTopic() domain.Topic {
	return domain.Topic{
		Title:             "How to Roast Coffee",
		PrimaryKeyword:    "roast coffee",
		SecondaryKeywords: []string{"home roasting", "coffee beans", "roast levels"},
		Outline:           []string{"Intro", "Equipment", "Process", "Mistakes", "Conclusion"},
		TargetWordCount:   1500,
	}
}

func testClient(endpoint string) *Client {
	return NewClient(config.SynthesisConfig{
		Endpoint:  endpoint,
		Model:     "test-model",
		APIKey:    "test-key",
		CostPer1K: 0.001,
	})
}

func chatReply(t *testing.T, content string, tokens int) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"total_tokens": tokens},
	})
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return raw
}

const validPlanJSON = `{
  "topics": [
    {"title": "T1", "primaryKeyword": "k1", "secondaryKeywords": ["a","b","c"], "outline": ["1","2","3","4","5"], "targetWordCount": 1200},
    {"title": "T2", "primaryKeyword": "k2", "secondaryKeywords": ["d","e","f"], "outline": ["1","2","3","4","5","6"]}
  ],
  "recommendedKeywords": ["coffee"],
  "contentPillars": ["education"],
  "targetAudience": "home brewers",
  "citations": [{"url": "https://rival.com", "quote": "Roasting matters."}]
}`

func TestSynthesizePlan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write(chatReply(t, validPlanJSON, 2000))
	}))
	defer server.Close()

	plan, err := testClient(server.URL).SynthesizePlan(context.Background(), ports.PlanRequest{
		NumberOfArticles: 2,
		MinWordCount:     1500,
	})
	if err != nil {
		t.Fatalf("SynthesizePlan error: %v", err)
	}

	if len(plan.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(plan.Topics))
	}
	if plan.Topics[0].TargetWordCount != 1200 {
		t.Fatalf("explicit word count ignored: %d", plan.Topics[0].TargetWordCount)
	}
	if plan.Topics[1].TargetWordCount != 1500 {
		t.Fatalf("missing word count not defaulted: %d", plan.Topics[1].TargetWordCount)
	}
	if len(plan.Citations) != 1 || plan.Citations[0].URL != "https://rival.com" {
		t.Fatalf("citations not mapped: %+v", plan.Citations)
	}
	// 2000 tokens at 0.001 per 1k
	if plan.EstimatedCost != 0.002 {
		t.Fatalf("unexpected cost %f", plan.EstimatedCost)
	}
}

func TestSynthesizePlanStripsCodeFence(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, "```json\n"+validPlanJSON+"\n```", 100))
	}))
	defer server.Close()

	plan, err := testClient(server.URL).SynthesizePlan(context.Background(), ports.PlanRequest{NumberOfArticles: 2})
	if err != nil {
		t.Fatalf("SynthesizePlan error: %v", err)
	}
	if len(plan.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(plan.Topics))
	}
}

func TestSynthesizePlanMalformedResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, "Here is your plan: great topics!", 100))
	}))
	defer server.Close()

	_, err := testClient(server.URL).SynthesizePlan(context.Background(), ports.PlanRequest{NumberOfArticles: 2})
	if err == nil {
		t.Fatal("expected parse error for prose response")
	}
	if errors.Is(err, workflow.ErrQuotaExceeded) || errors.Is(err, workflow.ErrAuthentication) {
		t.Fatalf("parse failure must be transient, got %v", err)
	}
}

func TestSynthesizePlanWrongTopicCount(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, validPlanJSON, 100))
	}))
	defer server.Close()

	if _, err := testClient(server.URL).SynthesizePlan(context.Background(), ports.PlanRequest{NumberOfArticles: 5}); err == nil {
		t.Fatal("expected shape error for wrong topic count")
	}
}

func TestQuotaAndAuthClassification(t *testing.T) {
	t.Parallel()

	quota := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer quota.Close()

	_, err := testClient(quota.URL).SynthesizePlan(context.Background(), ports.PlanRequest{NumberOfArticles: 1})
	if !errors.Is(err, workflow.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}

	auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer auth.Close()

	_, err = testClient(auth.URL).SynthesizePlan(context.Background(), ports.PlanRequest{NumberOfArticles: 1})
	if !errors.Is(err, workflow.ErrAuthentication) {
		t.Fatalf("expected auth error, got %v", err)
	}

	ratelimited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"insufficient_quota","message":"quota"}}`))
	}))
	defer ratelimited.Close()

	_, err = testClient(ratelimited.URL).SynthesizePlan(context.Background(), ports.PlanRequest{NumberOfArticles: 1})
	if !errors.Is(err, workflow.ErrQuotaExceeded) {
		t.Fatalf("expected quota error for 429 insufficient_quota, got %v", err)
	}
}

func TestSynthesizeArticle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, "# How to Roast\n\nBody text.", 4000))
	}))
	defer server.Close()

	article, err := testClient(server.URL).SynthesizeArticle(context.Background(), ports.ArticleRequest{
		Topic: workflowTopic(),
	})
	if err != nil {
		t.Fatalf("SynthesizeArticle error: %v", err)
	}

	if article.Title != "How to Roast Coffee" {
		t.Fatalf("unexpected title %q", article.Title)
	}
	if article.Body == "" {
		t.Fatal("empty body")
	}
	if article.EstimatedCost != 0.004 {
		t.Fatalf("unexpected cost %f", article.EstimatedCost)
	}
}

func TestSynthesizeArticleEmptyBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(chatReply(t, "   ", 10))
	}))
	defer server.Close()

	if _, err := testClient(server.URL).SynthesizeArticle(context.Background(), ports.ArticleRequest{Topic: workflowTopic()}); err == nil {
		t.Fatal("expected error for empty body")
	}
}
