package ports

import (
	"context"

	"ContentPilot/internal/domain"
)

// CampaignStore persists campaign configuration, research artifacts, and
// workflow progress.
type CampaignStore interface {
	Create(ctx context.Context, campaign *domain.Campaign) error
	Get(ctx context.Context, id string) (*domain.Campaign, error)
	SaveResearch(ctx context.Context, campaign *domain.Campaign) error
	UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus, step string, progress int) error
}

// SearchProvider runs one keyword query against an external SERP service.
type SearchProvider interface {
	Search(ctx context.Context, keyword, location string) ([]domain.SearchResult, error)
}

// PageFetcher extracts readable text from a URL.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (title, text string, err error)
}

// SynthesisClient is the external content-synthesis capability: structured
// plan generation over competitor excerpts, and per-topic article generation.
type SynthesisClient interface {
	SynthesizePlan(ctx context.Context, req PlanRequest) (*domain.ContentPlan, error)
	SynthesizeArticle(ctx context.Context, req ArticleRequest) (*domain.GeneratedArticle, error)
}

// PlanRequest carries the research context for plan synthesis.
type PlanRequest struct {
	BusinessDescription string
	TargetCountry       string
	Language            string
	NumberOfArticles    int
	MinWordCount        int
	SeedKeywords        []string
	Competitors         []domain.ScrapedArticle
}

// ArticleRequest carries one topic plus style constraints for article
// synthesis.
type ArticleRequest struct {
	Topic             domain.Topic
	Language          string
	Tone              string
	IncludeIntro      bool
	IncludeConclusion bool
	IncludeFAQ        bool
	LinkDensity       int
	References        []domain.ScrapedArticle
}

// UsageRecorder appends one entry to the token usage ledger.
type UsageRecorder interface {
	Record(ctx context.Context, rec domain.TokenUsageRecord) error
}

// Notifier announces campaign completion to an optional outbound channel.
type Notifier interface {
	CampaignCompleted(ctx context.Context, campaign *domain.Campaign, generated int) error
}
