package domain

import "time"

// CampaignStatus enumerates the forward-only workflow states.
type CampaignStatus string

const (
	StatusFormDataSaved   CampaignStatus = "form_data_saved"
	StatusKeywordResearch CampaignStatus = "keyword_research"
	StatusCompleted       CampaignStatus = "completed"
)

// Progress milestones assigned at each state transition.
const (
	ProgressFormSaved = 20
	ProgressResearch  = 60
	ProgressCompleted = 100
)

// ArticleLength names the target length tier selected at campaign creation.
type ArticleLength string

const (
	LengthShort  ArticleLength = "short"
	LengthMedium ArticleLength = "medium"
	LengthLong   ArticleLength = "long"
)

// WordCount maps the tier to the minimum word count requested from synthesis.
func (l ArticleLength) WordCount() int {
	switch l {
	case LengthShort:
		return 800
	case LengthLong:
		return 2500
	default:
		return 1500
	}
}

// CampaignConfig holds the immutable configuration captured at creation time.
type CampaignConfig struct {
	UserID              string
	BrandID             string
	WebsiteURL          string
	BusinessDescription string
	NumberOfArticles    int
	ArticleLength       ArticleLength
	Language            string
	TargetCountry       string
}

// Citation records one competitor source together with the quote that
// supports the generated plan.
type Citation struct {
	URL   string `json:"url"`
	Quote string `json:"quote"`
}

// Topic is one planned article produced by the research stage and consumed
// read-only by the generation stage.
type Topic struct {
	Title             string   `json:"title"`
	PrimaryKeyword    string   `json:"primary_keyword"`
	SecondaryKeywords []string `json:"secondary_keywords"`
	Outline           []string `json:"outline"`
	TargetWordCount   int      `json:"target_word_count"`
}

// StyleAnalysis is the structured research blob persisted on the campaign.
type StyleAnalysis struct {
	KnowledgeBase   string   `json:"knowledge_base"`
	ArticleOutlines []Topic  `json:"article_outlines"`
	SuggestedTitles []string `json:"suggested_titles"`
	ContentPillars  []string `json:"contentPillars"`
	TargetAudience  string   `json:"targetAudience"`
}

// Campaign is the persisted unit of work for one content-generation
// engagement. Research artifacts are populated progressively; the outline
// list is only ever written by the research stage.
type Campaign struct {
	ID      string
	UserID  string
	BrandID string

	WebsiteURL          string
	BusinessDescription string
	NumberOfArticles    int
	ArticleLength       ArticleLength
	Language            string
	TargetCountry       string

	ExtractedKeywords []string
	SearchLocation    string
	OrganicKeywords   []string
	ContentGaps       []string
	CompetitorDomains []string
	Citations         []Citation
	Analysis          StyleAnalysis

	Status      CampaignStatus
	CurrentStep string
	Progress    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TopicByTitle resolves a persisted outline by exact title match.
func (c *Campaign) TopicByTitle(title string) (Topic, bool) {
	for _, t := range c.Analysis.ArticleOutlines {
		if t.Title == title {
			return t, true
		}
	}
	return Topic{}, false
}
