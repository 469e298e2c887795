package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/db"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	// PromptIDs selects prompts in the given order. Empty exports the whole set.
	PromptIDs       []string `json:"prompt_ids,omitempty"`
	IncludeAnalysis bool     `json:"include_analysis,omitempty"`
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Filename string `json:"filename"`
	Markdown string `json:"markdown"`
	Count    int    `json:"count"`
}

// Export renders prompts back to heading-style markdown.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	all, err := db.ListPrompts(ctx, database)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errors.NewInvalidRequest("No prompts loaded")
	}

	selected := all
	if len(input.PromptIDs) > 0 {
		byID := make(map[string]prompt.Prompt, len(all))
		for _, p := range all {
			byID[p.ID] = p
		}
		selected = nil
		for _, id := range input.PromptIDs {
			if p, ok := byID[id]; ok {
				selected = append(selected, p)
			}
		}
		if len(selected) == 0 {
			return nil, errors.NewInvalidRequest("No matching prompts found")
		}
	}

	var annotate prompt.Annotator
	if input.IncludeAnalysis {
		notes := make(map[string]string, len(selected))
		for _, p := range selected {
			r, err := GetHeuristics(ctx, database, cfg, p.ID)
			if err != nil {
				return nil, err
			}
			notes[p.ID] = analysisComment(r, cfg)
		}
		annotate = func(p prompt.Prompt) string { return notes[p.ID] }
	}

	return &ExportOutput{
		Filename: "exported_prompts.md",
		Markdown: prompt.ToMarkdown(selected, annotate),
		Count:    len(selected),
	}, nil
}

// analysisComment summarizes a heuristic result as an HTML comment so the
// exported markdown still renders cleanly.
func analysisComment(r *heuristics.Result, cfg *config.Config) string {
	scores := make([]string, 0, len(heuristics.Dimensions))
	for _, name := range heuristics.Dimensions {
		scores = append(scores, fmt.Sprintf("%s %d", name, r.Dimension(name).Score))
	}
	return fmt.Sprintf("<!-- prompteval: overall %d/100 (%s) | %s -->",
		r.OverallScore, cfg.Label(r.OverallScore), strings.Join(scores, ", "))
}
