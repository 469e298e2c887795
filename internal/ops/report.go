package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// ReportEntry pairs a prompt with its heuristic result and size statistics.
type ReportEntry struct {
	Prompt prompt.Prompt      `json:"prompt"`
	Result *heuristics.Result `json:"result"`
	Label  string             `json:"label"`
	Chars  int                `json:"chars"`
	Words  int                `json:"words"`
	Tokens int                `json:"tokens"`
}

// ReportOutput is a scored view of a whole document.
type ReportOutput struct {
	Filename     string        `json:"filename"`
	Entries      []ReportEntry `json:"entries"`
	AverageScore int           `json:"average_score"`
}

// Summarize builds a report entry for an already-scored prompt.
func Summarize(p prompt.Prompt, r *heuristics.Result, cfg *config.Config) ReportEntry {
	return ReportEntry{
		Prompt: p,
		Result: r,
		Label:  cfg.Label(r.OverallScore),
		Chars:  prompt.CountChars(p.Content),
		Words:  prompt.CountWords(p.Content),
		Tokens: prompt.EstimateTokens(p.Content),
	}
}

// NewReport assembles a report from prompts and their results, which must
// be in the same order.
func NewReport(filename string, prompts []prompt.Prompt, results []*heuristics.Result, cfg *config.Config) *ReportOutput {
	out := &ReportOutput{Filename: filename, Entries: make([]ReportEntry, 0, len(prompts))}
	total := 0
	for i, p := range prompts {
		out.Entries = append(out.Entries, Summarize(p, results[i], cfg))
		total += results[i].OverallScore
	}
	if len(prompts) > 0 {
		out.AverageScore = total / len(prompts)
	}
	return out
}

// Report scores every prompt in the session, reusing cached results.
func Report(ctx context.Context, database *sql.DB, cfg *config.Config) (*ReportOutput, error) {
	list, err := List(ctx, database)
	if err != nil {
		return nil, err
	}

	results := make([]*heuristics.Result, len(list.Prompts))
	for i, p := range list.Prompts {
		r, err := GetHeuristics(ctx, database, cfg, p.ID)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return NewReport(list.Filename, list.Prompts, results, cfg), nil
}
