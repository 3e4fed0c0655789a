package domain

// SearchResult is one entry returned by a search provider for a keyword.
type SearchResult struct {
	URL      string
	Domain   string
	Title    string
	Position int
	Organic  bool
}

// ScrapedArticle is the ephemeral excerpt pulled from one competitor page.
// It lives only long enough to build the synthesis context and the citation
// list; it is never persisted.
type ScrapedArticle struct {
	URL     string
	Domain  string
	Title   string
	Excerpt string
}

// GeneratedArticle is the finished output of one article-synthesis call.
type GeneratedArticle struct {
	Title         string
	Body          string
	ImagePrompt   string
	EstimatedCost float64
}

// ContentPlan is the structured result of plan synthesis over the scraped
// competitor pool.
type ContentPlan struct {
	Topics              []Topic
	RecommendedKeywords []string
	Competitors         []string
	ContentPillars      []string
	ContentGaps         []string
	KeywordDifficulty   string
	MarketOpportunities []string
	TargetAudience      string
	Citations           []Citation
	EstimatedCost       float64
}
