// Package llm asks a Claude model for qualitative prompt reviews and rewrites.
// Results sit alongside heuristic scores; they never change them.
package llm

import (
	"context"

	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// Analysis is the model's review of a single prompt.
type Analysis struct {
	Ambiguities         []string `json:"ambiguities"`
	MissingContext      []string `json:"missing_context"`
	InjectionRisks      []string `json:"injection_risks"`
	BestPracticeIssues  []string `json:"best_practice_issues"`
	SuggestedRevision   *string  `json:"suggested_revision"`
	RevisionExplanation *string  `json:"revision_explanation"`
}

// Change is one edit within a Suggestion.
type Change struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Reason      string `json:"reason"`
}

// Suggestion is a proposed rewrite of a prompt.
type Suggestion struct {
	Original    string   `json:"original"`
	Suggested   string   `json:"suggested"`
	Explanation string   `json:"explanation"`
	Changes     []Change `json:"changes"`
}

// Analyzer is implemented by Client. Callers depend on this so tests can swap it.
type Analyzer interface {
	Analyze(ctx context.Context, p *prompt.Prompt) (*Analysis, error)
	// Suggest proposes a rewrite. h may be nil; when present its scores and
	// weakest issues are sent as context.
	Suggest(ctx context.Context, p *prompt.Prompt, h *heuristics.Result, focus []string) (*Suggestion, error)
}

// normalize replaces nil lists so JSON output always has arrays.
func (a *Analysis) normalize() {
	if a.Ambiguities == nil {
		a.Ambiguities = []string{}
	}
	if a.MissingContext == nil {
		a.MissingContext = []string{}
	}
	if a.InjectionRisks == nil {
		a.InjectionRisks = []string{}
	}
	if a.BestPracticeIssues == nil {
		a.BestPracticeIssues = []string{}
	}
}

// FindingCount is the number of findings across all categories.
func (a *Analysis) FindingCount() int {
	return len(a.Ambiguities) + len(a.MissingContext) + len(a.InjectionRisks) + len(a.BestPracticeIssues)
}
