// Package notify posts campaign completion events to an optional webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ContentPilot/internal/domain"
	"ContentPilot/internal/ports"
)

// Webhook sends a JSON completion event. Delivery is best effort; the
// orchestrator logs and ignores failures.
type Webhook struct {
	url    string
	client *http.Client
}

var _ ports.Notifier = (*Webhook)(nil)

// NewWebhook registers the target URL.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// CampaignCompleted posts the completion event.
func (w *Webhook) CampaignCompleted(ctx context.Context, campaign *domain.Campaign, generated int) error {
	if w.url == "" || w.client == nil {
		return fmt.Errorf("webhook notifier misconfigured")
	}

	payload, err := json.Marshal(map[string]any{
		"event":       "campaign_completed",
		"campaign_id": campaign.ID,
		"user_id":     campaign.UserID,
		"brand_id":    campaign.BrandID,
		"generated":   generated,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}

	return nil
}
