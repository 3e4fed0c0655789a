package workflow

import "testing"

func newTestTracker() *StageTracker {
	return NewStageTracker(
		Step{ID: "one", Title: "Step one"},
		Step{ID: "two", Title: "Step two"},
		Step{ID: "three", Title: "Step three"},
		Step{ID: "four", Title: "Step four"},
	)
}

func TestProgressWeighting(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()

	if got := tracker.Progress(); got != 0 {
		t.Fatalf("expected 0 progress, got %d", got)
	}

	_ = tracker.Set("one", StepCompleted, "")
	_ = tracker.Set("two", StepCompleted, "")
	_ = tracker.Set("three", StepRunning, "")

	// 2 completed at 25 each plus half weight for the running step.
	if got := tracker.Progress(); got != 62 {
		t.Fatalf("expected 62 progress, got %d", got)
	}
}

func TestSetUnknownStep(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	if err := tracker.Set("missing", StepCompleted, ""); err == nil {
		t.Fatal("expected error for unknown step")
	}
}

func TestDebugPayloadInference(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	_ = tracker.SetDebug("one", `{"result":"success","items":12}`)
	_ = tracker.SetDebug("two", `{"result":"error: upstream 503"}`)

	steps := tracker.Steps()
	if steps[0].Status != StepCompleted {
		t.Fatalf("expected inferred completed, got %s", steps[0].Status)
	}
	if steps[1].Status != StepError {
		t.Fatalf("expected inferred error, got %s", steps[1].Status)
	}
	if steps[2].Status != StepPending {
		t.Fatalf("expected pending without payload, got %s", steps[2].Status)
	}
}

func TestExplicitStatusWinsOverPayload(t *testing.T) {
	t.Parallel()

	tracker := newTestTracker()
	_ = tracker.Set("one", StepCompleted, "done")
	_ = tracker.SetDebug("one", `{"note":"error during cleanup, ignored"}`)

	steps := tracker.Steps()
	if steps[0].Status != StepCompleted {
		t.Fatalf("explicit status overridden by payload inference: %s", steps[0].Status)
	}
}
