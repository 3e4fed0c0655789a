// Package storage persists campaigns and the token usage ledger in Postgres.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
	"ContentPilot/internal/workflow"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore implements ports.CampaignStore and ports.UsageRecorder over
// a shared sql.DB.
type PostgresStore struct {
	db *sql.DB
}

var _ ports.CampaignStore = (*PostgresStore)(nil)
var _ ports.UsageRecorder = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a fresh campaign row.
func (s *PostgresStore) Create(ctx context.Context, c *domain.Campaign) error {
	if s.db == nil {
		return nil
	}

	analysis, err := json.Marshal(c.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	citations, err := json.Marshal(c.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}

	query, args, err := psql.Insert("campaigns").
		Columns("id", "user_id", "brand_id", "website_url", "business_description",
			"number_of_articles", "article_length", "language", "target_country",
			"extracted_keywords", "search_location", "organic_keywords",
			"content_gaps", "competitor_domains", "citations", "style_analysis",
			"status", "current_step", "progress", "created_at", "updated_at").
		Values(c.ID, c.UserID, c.BrandID, c.WebsiteURL, c.BusinessDescription,
			c.NumberOfArticles, string(c.ArticleLength), c.Language, c.TargetCountry,
			pq.StringArray(c.ExtractedKeywords), c.SearchLocation, pq.StringArray(c.OrganicKeywords),
			pq.StringArray(c.ContentGaps), pq.StringArray(c.CompetitorDomains), citations, analysis,
			string(c.Status), c.CurrentStep, c.Progress, c.CreatedAt, c.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

// Get loads one campaign by id, mapping absence to the workflow not-found
// kind so callers can treat it as fatal.
func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: store not configured", workflow.ErrNotFound)
	}

	query, args, err := psql.Select("id", "user_id", "brand_id", "website_url", "business_description",
		"number_of_articles", "article_length", "language", "target_country",
		"extracted_keywords", "search_location", "organic_keywords",
		"content_gaps", "competitor_domains", "citations", "style_analysis",
		"status", "current_step", "progress", "created_at", "updated_at").
		From("campaigns").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		c             domain.Campaign
		length        string
		status        string
		extracted     pq.StringArray
		organic       pq.StringArray
		gaps          pq.StringArray
		competitors   pq.StringArray
		citationsBlob []byte
		analysisBlob  []byte
	)

	row := s.db.QueryRowContext(ctx, query, args...)
	err = row.Scan(&c.ID, &c.UserID, &c.BrandID, &c.WebsiteURL, &c.BusinessDescription,
		&c.NumberOfArticles, &length, &c.Language, &c.TargetCountry,
		&extracted, &c.SearchLocation, &organic,
		&gaps, &competitors, &citationsBlob, &analysisBlob,
		&status, &c.CurrentStep, &c.Progress, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", workflow.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}

	c.ArticleLength = domain.ArticleLength(length)
	c.Status = domain.CampaignStatus(status)
	c.ExtractedKeywords = extracted
	c.OrganicKeywords = organic
	c.ContentGaps = gaps
	c.CompetitorDomains = competitors

	if len(citationsBlob) > 0 {
		if err := json.Unmarshal(citationsBlob, &c.Citations); err != nil {
			return nil, fmt.Errorf("unmarshal citations: %w", err)
		}
	}
	if len(analysisBlob) > 0 {
		if err := json.Unmarshal(analysisBlob, &c.Analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
	}

	return &c, nil
}

// SaveResearch writes the research-stage artifacts onto an existing row.
func (s *PostgresStore) SaveResearch(ctx context.Context, c *domain.Campaign) error {
	if s.db == nil {
		return nil
	}

	analysis, err := json.Marshal(c.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	citations, err := json.Marshal(c.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}

	query, args, err := psql.Update("campaigns").
		Set("organic_keywords", pq.StringArray(c.OrganicKeywords)).
		Set("content_gaps", pq.StringArray(c.ContentGaps)).
		Set("competitor_domains", pq.StringArray(c.CompetitorDomains)).
		Set("citations", citations).
		Set("style_analysis", analysis).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update research: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", workflow.ErrNotFound, c.ID)
	}
	return nil
}

// UpdateStatus advances the campaign's lifecycle fields.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status domain.CampaignStatus, step string, progress int) error {
	if s.db == nil {
		return nil
	}

	query, args, err := psql.Update("campaigns").
		Set("status", string(status)).
		Set("current_step", step).
		Set("progress", progress).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s", workflow.ErrNotFound, id)
	}
	return nil
}

// Record appends one token usage entry. The ledger is append-only.
func (s *PostgresStore) Record(ctx context.Context, rec domain.TokenUsageRecord) error {
	if s.db == nil {
		return nil
	}

	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query, args, err := psql.Insert("token_usage").
		Columns("user_id", "brand_id", "service", "model", "estimated_cost", "metadata", "created_at").
		Values(rec.UserID, rec.BrandID, rec.Service, rec.Model, rec.EstimatedCost, meta, rec.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}
