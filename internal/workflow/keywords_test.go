package workflow

import (
	"strings"
	"testing"
)

func TestSeedKeywordsContainStem(t *testing.T) {
	t.Parallel()

	keywords := SeedKeywords("artisan coffee roastery in Singapore")

	if len(keywords) != 5 {
		t.Fatalf("expected 5 keywords, got %d", len(keywords))
	}
	for _, kw := range keywords {
		if !strings.Contains(kw, "artisan coffee") {
			t.Fatalf("keyword %q does not contain stem", kw)
		}
	}
}

func TestSeedKeywordsSkipStopwords(t *testing.T) {
	t.Parallel()

	keywords := SeedKeywords("The best of our organic bakery")
	if len(keywords) == 0 {
		t.Fatal("expected keywords")
	}
	if !strings.Contains(keywords[0], "best organic") {
		t.Fatalf("expected stem to skip stopwords, got %q", keywords[0])
	}
}

func TestSeedKeywordsEmptyDescription(t *testing.T) {
	t.Parallel()

	if got := SeedKeywords("   "); got != nil {
		t.Fatalf("expected nil for blank description, got %v", got)
	}
}

func TestFormatSearchLocation(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Singapore":      "singapore",
		"United States":  "united+states",
		"  New Zealand ": "new+zealand",
		"":               "",
	}
	for input, want := range cases {
		if got := FormatSearchLocation(input); got != want {
			t.Fatalf("FormatSearchLocation(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFallbackPlanShape(t *testing.T) {
	t.Parallel()

	seeds := []string{"artisan coffee", "artisan coffee guide"}
	plan := FallbackPlan(seeds, 5, 1500)

	if len(plan.Topics) != 5 {
		t.Fatalf("expected exactly 5 topics, got %d", len(plan.Topics))
	}
	for i, topic := range plan.Topics {
		if topic.Title == "" {
			t.Fatalf("topic %d has empty title", i)
		}
		if topic.PrimaryKeyword == "" {
			t.Fatalf("topic %d has empty primary keyword", i)
		}
		if len(topic.SecondaryKeywords) != 3 {
			t.Fatalf("topic %d has %d secondary keywords", i, len(topic.SecondaryKeywords))
		}
		if len(topic.Outline) < 5 || len(topic.Outline) > 8 {
			t.Fatalf("topic %d outline has %d headings", i, len(topic.Outline))
		}
		if topic.TargetWordCount != 1500 {
			t.Fatalf("topic %d word count %d", i, topic.TargetWordCount)
		}
	}
}

func TestFallbackPlanNoSeeds(t *testing.T) {
	t.Parallel()

	plan := FallbackPlan(nil, 2, 800)
	if len(plan.Topics) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(plan.Topics))
	}
}
