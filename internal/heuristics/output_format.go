package heuristics

import (
	"strings"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// OutputFormat checks whether the prompt says how and how long to respond.
func OutputFormat(p *prompt.Prompt, cfg *config.Config) DimensionScore {
	ds := newScore()
	lower := strings.ToLower(p.Content)

	hasFormat := hasAnyMarker(lower, cfg.OutputFormatMarkers)
	if !hasFormat {
		ds.add("No output format specified", nil, nil)
		ds.suggest("Specify how you want the response formatted (JSON, list, paragraph, etc.)")
	}

	hasLength := hasAnyMarker(lower, cfg.LengthMarkers)
	if !hasLength {
		ds.add("No length or detail level specified", nil, nil)
		ds.suggest("Indicate desired response length (e.g., 'in 2-3 sentences' or 'detailed explanation')")
	}

	score := 75
	switch {
	case !hasFormat:
		score = 50
	case hasAnyMarker(lower, cfg.SpecificFormats):
		score = 100
	}
	if !hasLength {
		score -= 15
	}

	ds.Score = max(0, score)
	return ds
}
