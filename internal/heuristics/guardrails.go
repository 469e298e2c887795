package heuristics

import (
	"strings"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// Guardrails checks constraints, edge cases and scope. System and skill prompts
// are penalized for missing them; user prompts only get an advisory note.
func Guardrails(p *prompt.Prompt, cfg *config.Config) DimensionScore {
	ds := newScore()
	lower := strings.ToLower(p.Content)
	hasGuardrails := hasAnyMarker(lower, cfg.GuardrailMarkers)

	if !p.Type.SystemLike() {
		ds.Score = 70
		if hasGuardrails {
			ds.Score = 80
		} else {
			ds.add("Consider adding constraints if needed", nil, nil)
			ds.suggest("Add boundaries if you want to limit the response scope")
		}
		return ds
	}

	if !hasGuardrails {
		ds.add("System prompt lacks safety constraints", intPtr(p.LineStart), nil)
		ds.suggest("Add boundaries (e.g., 'Never share sensitive information', 'Only discuss topics related to...')")
	}

	if !hasAnyMarker(lower, cfg.EdgeCaseMarkers) {
		ds.add("No edge case handling defined", nil, nil)
		ds.suggest("Add instructions for handling edge cases or unexpected inputs")
	}

	hasScope := hasAnyMarker(lower, cfg.ScopeMarkers)
	if !hasScope {
		ds.add("No clear scope boundaries defined", nil, nil)
		ds.suggest("Define the scope of what the assistant should and shouldn't do")
	}

	base := 100
	switch {
	case !hasGuardrails:
		base = 40
	case !hasScope:
		base = 70
	}

	ds.Score = max(0, base-10*len(ds.Issues))
	return ds
}
