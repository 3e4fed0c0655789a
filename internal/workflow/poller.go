package workflow

import (
	"context"
	"time"
)

// Poller re-fetches campaign progress on a fixed interval. It is owned by
// the caller, not the orchestrator: the caller starts it, receives reports
// through its callback, and stops it explicitly or via context.
type Poller struct {
	orchestrator *Orchestrator
	interval     time.Duration
	stop         chan struct{}
}

// NewPoller builds a poller over the orchestrator's read path.
func NewPoller(o *Orchestrator, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{orchestrator: o, interval: interval}
}

// Start begins polling the campaign until Stop, context cancellation, or
// the campaign reaching completed. Each successful fetch is passed to
// onReport; fetch errors are skipped and the next tick retries.
func (p *Poller) Start(ctx context.Context, campaignID string, onReport func(*ProgressReport)) error {
	if onReport == nil || p.stop != nil {
		return nil
	}

	p.stop = make(chan struct{})
	stop := p.stop
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				report, err := p.orchestrator.CheckProgress(ctx, campaignID)
				if err != nil {
					continue
				}
				onReport(report)
				if report.Progress >= 100 {
					return
				}
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	if p.stop == nil {
		return
	}
	close(p.stop)
	p.stop = nil
}
