package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ContentPilot/internal/domain"
	"ContentPilot/internal/metrics"
	"ContentPilot/internal/ports"
	"ContentPilot/internal/retry"
)

// Research stage step identifiers, in display order.
const (
	StepWebsiteAnalysis = "website_analysis"
	StepKeywordSearch   = "keyword_search"
	StepSourceSelection = "source_selection"
	StepScraping        = "scrape_competitors"
	StepPlanSynthesis   = "plan_synthesis"
)

const usageService = "content-synthesis"

// Deps wires all driven adapters into the orchestrator.
type Deps struct {
	Store     ports.CampaignStore
	Search    ports.SearchProvider
	Fetcher   ports.PageFetcher
	Synthesis ports.SynthesisClient
	Usage     ports.UsageRecorder
	Notifier  ports.Notifier
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// SynthesisModel names the generation model for usage-ledger entries.
	SynthesisModel string
	// MaxCompetitors bounds source selection (default 5).
	MaxCompetitors int
	// AnalysisRetries bounds the website-analysis step (default 3).
	AnalysisRetries int
	// RetryDelay is the fixed pause between analysis attempts.
	RetryDelay time.Duration
}

// Orchestrator sequences the campaign workflow as a set of named actions.
// Runs are single-flight per campaign: a second concurrent action for the
// same campaign id fails with ErrWorkflowBusy instead of racing.
type Orchestrator struct {
	store     ports.CampaignStore
	search    ports.SearchProvider
	fetcher   ports.PageFetcher
	synthesis ports.SynthesisClient
	usage     ports.UsageRecorder
	notifier  ports.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger

	model          string
	maxCompetitors int
	analysisRetry  *retry.Executor

	mu     sync.Mutex
	active map[string]struct{}
}

// New constructs the orchestrator.
func New(deps Deps) *Orchestrator {
	if deps.MaxCompetitors <= 0 {
		deps.MaxCompetitors = 5
	}
	if deps.AnalysisRetries <= 0 {
		deps.AnalysisRetries = 3
	}
	if deps.RetryDelay <= 0 {
		deps.RetryDelay = 2 * time.Second
	}

	return &Orchestrator{
		store:          deps.Store,
		search:         deps.Search,
		fetcher:        deps.Fetcher,
		synthesis:      deps.Synthesis,
		usage:          deps.Usage,
		notifier:       deps.Notifier,
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		model:          deps.SynthesisModel,
		maxCompetitors: deps.MaxCompetitors,
		analysisRetry: retry.New(retry.Config{
			MaxAttempts: deps.AnalysisRetries,
			Delay:       deps.RetryDelay,
			Classify:    Classify,
		}),
		active: make(map[string]struct{}),
	}
}

// StartResult is returned by StartWorkflow.
type StartResult struct {
	Campaign *domain.Campaign
	Keywords []string
	Progress int
}

// RunResult is returned by RunWorkflow.
type RunResult struct {
	Topics   []domain.Topic
	Keywords []string
	Steps    []Step
	Progress int
}

// ProgressReport is the polling read path for a campaign.
type ProgressReport struct {
	CampaignID  string
	Status      domain.CampaignStatus
	CurrentStep string
	Progress    int
}

// StartWorkflow validates the configuration, derives the seed keyword set,
// and creates the campaign at form_data_saved / progress 20.
func (o *Orchestrator) StartWorkflow(ctx context.Context, cfg domain.CampaignConfig) (*StartResult, error) {
	if strings.TrimSpace(cfg.BusinessDescription) == "" {
		return nil, ValidationError("business description")
	}
	if cfg.NumberOfArticles <= 0 {
		return nil, ValidationError("number of articles")
	}

	keywords := SeedKeywords(cfg.BusinessDescription)
	campaign := &domain.Campaign{
		ID:                  uuid.New().String(),
		UserID:              cfg.UserID,
		BrandID:             cfg.BrandID,
		WebsiteURL:          cfg.WebsiteURL,
		BusinessDescription: cfg.BusinessDescription,
		NumberOfArticles:    cfg.NumberOfArticles,
		ArticleLength:       cfg.ArticleLength,
		Language:            cfg.Language,
		TargetCountry:       cfg.TargetCountry,
		ExtractedKeywords:   keywords,
		SearchLocation:      FormatSearchLocation(cfg.TargetCountry),
		Status:              domain.StatusFormDataSaved,
		CurrentStep:         "form_data_saved",
		Progress:            domain.ProgressFormSaved,
		CreatedAt:           time.Now().UTC(),
	}

	if err := o.store.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	o.metrics.WorkflowStarted()
	o.info("workflow started", "campaign_id", campaign.ID, "keywords", len(keywords))

	return &StartResult{
		Campaign: campaign,
		Keywords: keywords,
		Progress: campaign.Progress,
	}, nil
}

// RunWorkflow executes the research stage end to end: website analysis,
// keyword search, source selection, competitor scraping, and plan synthesis,
// then persists the artifacts and moves the campaign to keyword_research /
// progress 60. On unrecoverable failure nothing is written, so the campaign
// stays retryable in its prior state.
func (o *Orchestrator) RunWorkflow(ctx context.Context, campaignID string) (*RunResult, error) {
	release, err := o.acquire(campaignID)
	if err != nil {
		return nil, err
	}
	defer release()

	campaign, err := o.store.Get(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", campaignID, err)
	}

	tracker := NewStageTracker(
		Step{ID: StepWebsiteAnalysis, Title: "Website analysis", Description: "Extracting text from the campaign website"},
		Step{ID: StepKeywordSearch, Title: "Keyword search", Description: "Collecting search results for seed keywords"},
		Step{ID: StepSourceSelection, Title: "Source selection", Description: "Picking top competitor articles"},
		Step{ID: StepScraping, Title: "Competitor scraping", Description: "Extracting competitor article excerpts"},
		Step{ID: StepPlanSynthesis, Title: "Plan synthesis", Description: "Generating the content plan"},
	)

	siteText := o.analyzeWebsite(ctx, tracker, campaign)

	pool, err := o.collectResults(ctx, tracker, campaign)
	if err != nil {
		return nil, err
	}

	_ = tracker.Set(StepSourceSelection, StepRunning, "")
	selected := SelectSources(pool, campaign.WebsiteURL, o.maxCompetitors)
	_ = tracker.Set(StepSourceSelection, StepCompleted, fmt.Sprintf("selected %d of %d results", len(selected), len(pool)))

	scraped := o.scrapeCompetitors(ctx, tracker, selected)

	plan, err := o.synthesizePlan(ctx, tracker, campaign, siteText, scraped)
	if err != nil {
		return nil, err
	}

	applyPlan(campaign, plan, scraped)
	if err := o.store.SaveResearch(ctx, campaign); err != nil {
		return nil, fmt.Errorf("persist research: %w", err)
	}
	if err := o.store.UpdateStatus(ctx, campaign.ID, domain.StatusKeywordResearch, StepPlanSynthesis, domain.ProgressResearch); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	o.info("research stage complete", "campaign_id", campaign.ID, "topics", len(plan.Topics))

	return &RunResult{
		Topics:   plan.Topics,
		Keywords: campaign.OrganicKeywords,
		Steps:    tracker.Steps(),
		Progress: domain.ProgressResearch,
	}, nil
}

// GenerateArticles resolves each selected title to a persisted topic and
// generates articles one at a time, in input order. A missing title or a
// failed synthesis call affects only that title; the batch continues. The
// campaign moves to completed only if at least one article succeeded, and
// the returned count reflects actual successes so callers can detect
// partial results.
func (o *Orchestrator) GenerateArticles(ctx context.Context, campaignID string, selectedTitles []string) (int, error) {
	release, err := o.acquire(campaignID)
	if err != nil {
		return 0, err
	}
	defer release()

	campaign, err := o.store.Get(ctx, campaignID)
	if err != nil {
		return 0, fmt.Errorf("load campaign %s: %w", campaignID, err)
	}

	generated := 0
	for _, title := range selectedTitles {
		topic, ok := campaign.TopicByTitle(title)
		if !ok {
			o.warn("no outline for title, skipping", "campaign_id", campaignID, "title", title)
			continue
		}

		article, genErr := o.synthesis.SynthesizeArticle(ctx, ports.ArticleRequest{
			Topic:             topic,
			Language:          campaign.Language,
			Tone:              "professional",
			IncludeIntro:      true,
			IncludeConclusion: true,
			IncludeFAQ:        true,
			LinkDensity:       2,
		})

		o.recordUsage(ctx, campaign, "article", topic.Title, articleCost(article), genErr)

		if genErr != nil {
			o.metrics.ArticleFailed()
			o.warn("article generation failed", "campaign_id", campaignID, "title", title, "error", genErr)
			continue
		}

		generated++
		o.metrics.ArticleGenerated(article.EstimatedCost)
		o.info("article generated", "campaign_id", campaignID, "title", title)
	}

	if generated == 0 {
		return 0, nil
	}

	if err := o.store.UpdateStatus(ctx, campaign.ID, domain.StatusCompleted, "completed", domain.ProgressCompleted); err != nil {
		return generated, fmt.Errorf("update status: %w", err)
	}
	o.metrics.WorkflowCompleted()

	if o.notifier != nil {
		if err := o.notifier.CampaignCompleted(ctx, campaign, generated); err != nil {
			o.warn("completion notification failed", "campaign_id", campaignID, "error", err)
		}
	}

	return generated, nil
}

// CheckProgress returns the persisted status for polling callers.
func (o *Orchestrator) CheckProgress(ctx context.Context, campaignID string) (*ProgressReport, error) {
	campaign, err := o.store.Get(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("load campaign %s: %w", campaignID, err)
	}

	return &ProgressReport{
		CampaignID:  campaign.ID,
		Status:      campaign.Status,
		CurrentStep: campaign.CurrentStep,
		Progress:    campaign.Progress,
	}, nil
}

// analyzeWebsite pulls the campaign site's text with retries. The text is
// supplementary synthesis context, so exhausting the retries degrades to an
// empty excerpt instead of failing the run; fatal classifications still
// surface through the step status.
func (o *Orchestrator) analyzeWebsite(ctx context.Context, tracker *StageTracker, campaign *domain.Campaign) string {
	_ = tracker.Set(StepWebsiteAnalysis, StepRunning, "")

	if o.fetcher == nil || campaign.WebsiteURL == "" {
		_ = tracker.Set(StepWebsiteAnalysis, StepCompleted, "no website configured")
		return ""
	}

	var text string
	err := o.analysisRetry.Do(ctx, func(ctx context.Context) error {
		_, fetched, fetchErr := o.fetcher.FetchText(ctx, campaign.WebsiteURL)
		if fetchErr != nil {
			o.metrics.ExternalRetry("website_analysis")
			return fetchErr
		}
		text = fetched
		return nil
	})
	if err != nil {
		_ = tracker.Set(StepWebsiteAnalysis, StepError, err.Error())
		o.warn("website analysis failed, continuing without site text", "campaign_id", campaign.ID, "error", err)
		return ""
	}

	_ = tracker.Set(StepWebsiteAnalysis, StepCompleted, fmt.Sprintf("extracted %d characters", len(text)))
	return text
}

// collectResults queries the search provider once per seed keyword.
// Individual keyword failures are tolerated; an empty pool with no provider
// results at all aborts the run as transient.
func (o *Orchestrator) collectResults(ctx context.Context, tracker *StageTracker, campaign *domain.Campaign) ([]domain.SearchResult, error) {
	_ = tracker.Set(StepKeywordSearch, StepRunning, "")

	keywords := campaign.ExtractedKeywords
	if len(keywords) == 0 {
		keywords = SeedKeywords(campaign.BusinessDescription)
	}

	var pool []domain.SearchResult
	failures := 0
	for _, kw := range keywords {
		results, err := o.search.Search(ctx, kw, campaign.SearchLocation)
		if err != nil {
			if Classify(err) == retry.Fatal {
				_ = tracker.Set(StepKeywordSearch, StepError, err.Error())
				return nil, err
			}
			failures++
			o.warn("keyword search failed", "campaign_id", campaign.ID, "keyword", kw, "error", err)
			continue
		}
		pool = append(pool, results...)
	}

	if len(pool) == 0 {
		msg := fmt.Sprintf("no search results for %d keywords (%d failures)", len(keywords), failures)
		_ = tracker.Set(StepKeywordSearch, StepError, msg)
		return nil, fmt.Errorf("keyword search: %s", msg)
	}

	_ = tracker.Set(StepKeywordSearch, StepCompleted, fmt.Sprintf("collected %d results", len(pool)))
	return pool, nil
}

// scrapeCompetitors extracts excerpts from the selected sources. Flaky
// scrapes are expected; whatever portion of the pool survives is enough for
// synthesis.
func (o *Orchestrator) scrapeCompetitors(ctx context.Context, tracker *StageTracker, selected []domain.SearchResult) []domain.ScrapedArticle {
	_ = tracker.Set(StepScraping, StepRunning, "")

	scraped := make([]domain.ScrapedArticle, 0, len(selected))
	for _, res := range selected {
		if o.fetcher == nil {
			break
		}
		title, text, err := o.fetcher.FetchText(ctx, res.URL)
		if err != nil {
			o.warn("competitor scrape failed", "url", res.URL, "error", err)
			continue
		}
		if title == "" {
			title = res.Title
		}
		scraped = append(scraped, domain.ScrapedArticle{
			URL:     res.URL,
			Domain:  NormalizeDomain(res.Domain),
			Title:   title,
			Excerpt: text,
		})
	}

	_ = tracker.Set(StepScraping, StepCompleted, fmt.Sprintf("scraped %d of %d sources", len(scraped), len(selected)))
	return scraped
}

// synthesizePlan calls plan synthesis, falling back to the deterministic
// seed-keyword plan when the response is unusable. Quota and auth failures
// are fatal and abort the run.
func (o *Orchestrator) synthesizePlan(ctx context.Context, tracker *StageTracker, campaign *domain.Campaign, siteText string, scraped []domain.ScrapedArticle) (*domain.ContentPlan, error) {
	_ = tracker.Set(StepPlanSynthesis, StepRunning, "")

	businessContext := campaign.BusinessDescription
	if siteText != "" {
		businessContext += "\n\nWebsite content:\n" + siteText
	}

	plan, err := o.synthesis.SynthesizePlan(ctx, ports.PlanRequest{
		BusinessDescription: businessContext,
		TargetCountry:       campaign.TargetCountry,
		Language:            campaign.Language,
		NumberOfArticles:    campaign.NumberOfArticles,
		MinWordCount:        campaign.ArticleLength.WordCount(),
		SeedKeywords:        campaign.ExtractedKeywords,
		Competitors:         scraped,
	})

	o.recordUsage(ctx, campaign, "plan", "", planCost(plan), err)

	if err != nil {
		if Classify(err) == retry.Fatal {
			_ = tracker.Set(StepPlanSynthesis, StepError, err.Error())
			return nil, err
		}
		o.warn("plan synthesis unusable, using deterministic fallback", "campaign_id", campaign.ID, "error", err)
		plan = FallbackPlan(campaign.ExtractedKeywords, campaign.NumberOfArticles, campaign.ArticleLength.WordCount())
		_ = tracker.Set(StepPlanSynthesis, StepCompleted, "fallback plan built from seed keywords")
		return plan, nil
	}

	_ = tracker.Set(StepPlanSynthesis, StepCompleted, fmt.Sprintf("synthesized %d topics", len(plan.Topics)))
	return plan, nil
}

// applyPlan copies the synthesized artifacts onto the campaign record. The
// outline list is replaced wholesale here and nowhere else.
func applyPlan(campaign *domain.Campaign, plan *domain.ContentPlan, scraped []domain.ScrapedArticle) {
	titles := make([]string, 0, len(plan.Topics))
	for _, t := range plan.Topics {
		titles = append(titles, t.Title)
	}

	citations := plan.Citations
	if len(citations) == 0 {
		for _, s := range scraped {
			citations = append(citations, domain.Citation{URL: s.URL, Quote: firstSentence(s.Excerpt)})
		}
	}

	competitors := plan.Competitors
	if len(competitors) == 0 {
		for _, s := range scraped {
			competitors = append(competitors, s.Domain)
		}
	}

	campaign.OrganicKeywords = plan.RecommendedKeywords
	campaign.ContentGaps = plan.ContentGaps
	campaign.CompetitorDomains = competitors
	campaign.Citations = citations
	campaign.Analysis = domain.StyleAnalysis{
		KnowledgeBase:   campaign.BusinessDescription,
		ArticleOutlines: plan.Topics,
		SuggestedTitles: titles,
		ContentPillars:  plan.ContentPillars,
		TargetAudience:  plan.TargetAudience,
	}
}

// recordUsage appends a ledger entry for one synthesis attempt. Ledger
// failures are logged and swallowed; they must never fail the action.
func (o *Orchestrator) recordUsage(ctx context.Context, campaign *domain.Campaign, kind, title string, cost float64, callErr error) {
	if o.usage == nil {
		return
	}

	meta := map[string]any{
		"campaign_id": campaign.ID,
		"kind":        kind,
	}
	if title != "" {
		meta["title"] = title
	}
	if callErr != nil {
		meta["error"] = callErr.Error()
	}

	rec := domain.TokenUsageRecord{
		UserID:        campaign.UserID,
		BrandID:       campaign.BrandID,
		Service:       usageService,
		Model:         o.model,
		EstimatedCost: cost,
		Metadata:      meta,
		CreatedAt:     time.Now().UTC(),
	}
	if err := o.usage.Record(ctx, rec); err != nil {
		o.warn("usage ledger write failed", "campaign_id", campaign.ID, "error", err)
	}
}

// acquire takes the single-flight slot for a campaign id.
func (o *Orchestrator) acquire(campaignID string) (func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, busy := o.active[campaignID]; busy {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowBusy, campaignID)
	}
	o.active[campaignID] = struct{}{}

	return func() {
		o.mu.Lock()
		delete(o.active, campaignID)
		o.mu.Unlock()
	}, nil
}

func planCost(plan *domain.ContentPlan) float64 {
	if plan == nil {
		return 0
	}
	return plan.EstimatedCost
}

func articleCost(article *domain.GeneratedArticle) float64 {
	if article == nil {
		return 0
	}
	return article.EstimatedCost
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".!?"); idx > 0 && idx < 200 {
		return text[:idx+1]
	}
	if len(text) > 200 {
		return text[:200]
	}
	return text
}

func (o *Orchestrator) info(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Info(msg, args...)
	}
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
