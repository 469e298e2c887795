package heuristics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/prompt"
)

var (
	sentenceSplit  = regexp.MustCompile(`[.!?]+`)
	passivePattern = regexp.MustCompile(`(?i)\b(is|are|was|were|been|being)\s+\w+ed\b`)
	pronounPattern = regexp.MustCompile(`(?i)\b(it|this|that|these|those)\b`)
)

const (
	passiveThreshold = 2 // flagged when more lines than this match
	passiveReported  = 3
	pronounThreshold = 5
)

// Clarity scores readability, sentence length, passive voice and pronoun use.
func Clarity(p *prompt.Prompt, cfg *config.Config) DimensionScore {
	ds := newScore()
	content := p.Content

	for idx, line := range strings.Split(content, "\n") {
		for _, sentence := range sentenceSplit.Split(line, -1) {
			words := len(strings.Fields(sentence))
			if words > cfg.Thresholds.MaxSentenceLength {
				ds.add(fmt.Sprintf("Overly long sentence (%d words)", words),
					intPtr(p.LineStart+idx), strPtr(truncate(sentence, 60)))
			}
		}
	}
	if len(ds.Issues) > 0 {
		ds.suggest("Break long sentences into shorter, clearer ones")
	}

	if passive := findPatternLines(content, passivePattern, p.LineStart); len(passive) > passiveThreshold {
		for _, m := range passive[:min(passiveReported, len(passive))] {
			ds.add("Passive voice construction", intPtr(m.line), strPtr(m.text))
		}
		ds.suggest("Use active voice for clearer instructions")
	}

	if pronouns := findPatternLines(content, pronounPattern, p.LineStart); len(pronouns) > pronounThreshold {
		ds.add(fmt.Sprintf("High use of pronouns (%d) may cause ambiguity", len(pronouns)), intPtr(pronouns[0].line), nil)
		ds.suggest("Replace ambiguous pronouns with specific nouns")
	}

	base := 95
	switch ease := FleschReadingEase(content); {
	case ease < 30:
		base = 40
		ds.add("Text is very difficult to read", nil, nil)
		ds.suggest("Simplify language and sentence structure")
	case ease < 50:
		base = 60
		ds.add("Text is somewhat difficult to read", nil, nil)
	case ease < 70:
		base = 80
	}

	ds.Score = max(0, base-min(30, 5*len(ds.Issues)))
	return ds
}
