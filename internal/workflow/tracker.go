package workflow

import (
	"fmt"
	"strings"
	"sync"
)

// StepState enumerates tracked statuses for one pipeline step.
type StepState string

const (
	StepPending   StepState = "pending"
	StepRunning   StepState = "running"
	StepCompleted StepState = "completed"
	StepError     StepState = "error"
)

// Step is the per-run status of one named unit of pipeline work.
type Step struct {
	ID          string
	Title       string
	Description string
	Status      StepState
	Message     string
	Debug       string

	explicit bool
}

// StageTracker holds the ordered step list for a single workflow run. It is
// rebuilt fresh on every invocation and never persisted.
type StageTracker struct {
	mu    sync.Mutex
	steps []*Step
	index map[string]*Step
}

// NewStageTracker seeds the tracker with steps in display order, all pending.
func NewStageTracker(steps ...Step) *StageTracker {
	t := &StageTracker{index: make(map[string]*Step, len(steps))}
	for i := range steps {
		s := steps[i]
		if s.Status == "" {
			s.Status = StepPending
		}
		copied := s
		t.steps = append(t.steps, &copied)
		t.index[s.ID] = t.steps[len(t.steps)-1]
	}
	return t
}

// Set updates one step's status and message by identifier.
func (t *StageTracker) Set(id string, status StepState, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	step, ok := t.index[id]
	if !ok {
		return fmt.Errorf("unknown step %q", id)
	}
	step.Status = status
	step.Message = message
	step.explicit = true
	return nil
}

// SetDebug attaches a structured debug payload to a step without touching
// its explicit status.
func (t *StageTracker) SetDebug(id, debug string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	step, ok := t.index[id]
	if !ok {
		return fmt.Errorf("unknown step %q", id)
	}
	step.Debug = debug
	return nil
}

// Steps returns a snapshot of all steps with effective statuses resolved.
func (t *StageTracker) Steps() []Step {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Step, 0, len(t.steps))
	for _, s := range t.steps {
		snap := *s
		snap.Status = effectiveStatus(s)
		out = append(out, snap)
	}
	return out
}

// Progress computes the overall percentage: each completed step earns an
// equal share, a currently-running step earns half a share.
func (t *StageTracker) Progress() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := len(t.steps)
	if total == 0 {
		return 0
	}

	weight := 100.0 / float64(total)
	var pct float64
	for _, s := range t.steps {
		switch effectiveStatus(s) {
		case StepCompleted:
			pct += weight
		case StepRunning:
			pct += weight / 2
		}
	}

	if pct > 100 {
		pct = 100
	}
	return int(pct)
}

// effectiveStatus returns the explicit status when one was set. Otherwise it
// falls back to best-effort marker matching over the debug payload. The
// inference is a display hint only and never overrides an explicit status.
func effectiveStatus(s *Step) StepState {
	if s.explicit {
		return s.Status
	}
	if s.Debug == "" {
		return s.Status
	}

	payload := strings.ToLower(s.Debug)
	switch {
	case strings.Contains(payload, "error") || strings.Contains(payload, "failed"):
		return StepError
	case strings.Contains(payload, "warning"):
		return StepRunning
	case strings.Contains(payload, "success") || strings.Contains(payload, "completed"):
		return StepCompleted
	default:
		return s.Status
	}
}
