package workflow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"ContentPilot/internal/domain"
)

func TestPollerReportsAndStopsAtCompletion(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	campaign := seedResearchCampaign(store, []domain.Topic{{Title: "Topic 1", PrimaryKeyword: "k1"}})

	o := newTestOrchestrator(store, &fakeSearch{}, &fakeFetcher{}, &fakeSynthesis{})
	poller := NewPoller(o, 5*time.Millisecond)

	var reports atomic.Int32
	done := make(chan struct{})
	err := poller.Start(context.Background(), campaign.ID, func(report *ProgressReport) {
		if reports.Add(1) == 2 {
			// complete the campaign so the poller exits on its own
			_ = store.UpdateStatus(context.Background(), campaign.ID, domain.StatusCompleted, "completed", 100)
		}
		if report.Progress >= 100 {
			close(done)
		}
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer poller.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller never observed completion")
	}
}

func TestPollerStop(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	campaign := seedResearchCampaign(store, []domain.Topic{{Title: "Topic 1", PrimaryKeyword: "k1"}})

	o := newTestOrchestrator(store, &fakeSearch{}, &fakeFetcher{}, &fakeSynthesis{})
	poller := NewPoller(o, time.Millisecond)

	if err := poller.Start(context.Background(), campaign.ID, func(*ProgressReport) {}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	poller.Stop()
	// a second Stop must be a no-op
	poller.Stop()
}
