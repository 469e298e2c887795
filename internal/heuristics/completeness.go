package heuristics

import (
	"fmt"
	"strings"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/prompt"
)

const (
	tinyPromptWords = 10
	contextWords    = 30
)

// Completeness checks length, role (system/skill only), context and task.
func Completeness(p *prompt.Prompt, cfg *config.Config) DimensionScore {
	ds := newScore()
	lower := strings.ToLower(p.Content)
	words := len(strings.Fields(p.Content))
	minWords := cfg.Thresholds.MinWordCount

	if words < minWords {
		ds.add(fmt.Sprintf("Prompt is very short (%d words)", words), intPtr(p.LineStart), nil)
		ds.suggest(fmt.Sprintf("Consider expanding to at least %d words", minWords))
	}

	if p.Type.SystemLike() && !hasAnyMarker(lower, cfg.RoleMarkers) {
		ds.add("No clear role or persona defined", intPtr(p.LineStart), nil)
		ds.suggest("Start with 'You are...' to establish the assistant's role")
	}

	if words > contextWords && !hasAnyMarker(lower, cfg.ContextMarkers) {
		ds.add("No explicit context or background provided", nil, nil)
		ds.suggest("Add context about the situation or domain")
	}

	if !hasAnyMarker(lower, cfg.TaskMarkers) {
		ds.add("No clear task or objective stated", nil, nil)
		ds.suggest("Clearly state what you want the assistant to do")
	}

	base := 100
	switch {
	case words < tinyPromptWords:
		base = 30
	case words < minWords:
		base = 60
	}

	ds.Score = max(0, base-12*len(ds.Issues))
	return ds
}
