package heuristics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/prompt"
)

var numberPattern = regexp.MustCompile(`\b\d+\b`)

var quantityPhrases = []string{"at least", "at most", "maximum", "minimum", "up to", "no more than"}

// Specificity penalizes vague terms and rewards examples and measurable criteria.
// Each line counts once per vague term, however often the term repeats on it.
func Specificity(p *prompt.Prompt, cfg *config.Config) DimensionScore {
	ds := newScore()
	lower := strings.ToLower(p.Content)

	vague := 0
	for _, term := range cfg.VagueTerms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		for _, m := range findPatternLines(p.Content, wordPattern(term), p.LineStart) {
			ds.add(fmt.Sprintf("Vague term: '%s'", term), intPtr(m.line), strPtr(m.text))
			vague++
		}
	}
	if vague > 0 {
		ds.suggest("Replace vague terms with specific criteria or examples")
	}

	hasExamples := hasAnyMarker(lower, cfg.ExampleMarkers)
	if !hasExamples {
		ds.add("No examples provided", nil, nil)
		ds.suggest("Add concrete examples to clarify expectations")
	}

	quantifiable := numberPattern.MatchString(p.Content) || hasAnyMarker(lower, quantityPhrases)
	if !quantifiable {
		ds.add("No quantifiable criteria found", nil, nil)
		ds.suggest("Add specific numbers or quantities where applicable")
	}

	penalty := 5 * vague
	if !hasExamples {
		penalty += 15
	}
	if !quantifiable {
		penalty += 10
	}
	ds.Score = max(0, 100-penalty)
	return ds
}
