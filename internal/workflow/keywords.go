package workflow

import (
	"fmt"
	"strings"

	"ContentPilot/internal/domain"
)

// stopwords excluded when deriving the keyword stem from a business
// description.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "for": {}, "in": {}, "is": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "the": {}, "to": {}, "we": {}, "with": {},
}

// SeedKeywords derives five search keywords from a business description by
// simple word-splitting. This is an intentionally cheap deterministic
// heuristic used only at workflow start; the research stage replaces it with
// model-backed keyword synthesis.
func SeedKeywords(description string) []string {
	stem := keywordStem(description)
	if stem == "" {
		return nil
	}

	return []string{
		stem,
		stem + " guide",
		"best " + stem,
		stem + " tips",
		stem + " near me",
	}
}

// keywordStem extracts the first two significant words of the description.
func keywordStem(description string) string {
	fields := strings.Fields(strings.ToLower(description))
	significant := make([]string, 0, 2)
	for _, word := range fields {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		significant = append(significant, word)
		if len(significant) == 2 {
			break
		}
	}
	return strings.Join(significant, " ")
}

// FormatSearchLocation converts a target country into the provider's
// location code: lowercase with plus-joined words, empty input meaning no
// geo restriction.
func FormatSearchLocation(country string) string {
	country = strings.TrimSpace(strings.ToLower(country))
	if country == "" {
		return ""
	}
	return strings.Join(strings.Fields(country), "+")
}

// FallbackPlan builds a deterministic content plan directly from the seed
// keywords when plan synthesis returns an unparseable response. It always
// yields exactly n topics so the pipeline never surfaces an empty plan.
func FallbackPlan(seeds []string, n, wordCount int) *domain.ContentPlan {
	if len(seeds) == 0 {
		seeds = []string{"content marketing"}
	}

	topics := make([]domain.Topic, 0, n)
	for i := 0; i < n; i++ {
		kw := seeds[i%len(seeds)]
		title := fallbackTitle(kw, i/len(seeds))
		topics = append(topics, domain.Topic{
			Title:          title,
			PrimaryKeyword: kw,
			SecondaryKeywords: []string{
				kw + " benefits",
				kw + " examples",
				"how to choose " + kw,
			},
			Outline: []string{
				"Introduction",
				fmt.Sprintf("What is %s", kw),
				fmt.Sprintf("Why %s matters", kw),
				fmt.Sprintf("How to get started with %s", kw),
				"Common mistakes to avoid",
				"Conclusion",
			},
			TargetWordCount: wordCount,
		})
	}

	return &domain.ContentPlan{
		Topics:              topics,
		RecommendedKeywords: seeds,
		TargetAudience:      "Readers searching for " + seeds[0],
	}
}

func fallbackTitle(keyword string, round int) string {
	titles := []string{
		"The Complete Guide to %s",
		"%s: Everything You Need to Know",
		"How to Get the Most Out of %s",
	}
	format := titles[round%len(titles)]
	return fmt.Sprintf(format, titleCase(keyword))
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
