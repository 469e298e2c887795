package ops

import (
	"context"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// The operations in this file are stateless: they score text without
// touching the session store. The CLI and the MCP server use them.

// DefaultCheckName names prompts analyzed with Check.
const DefaultCheckName = "inline-prompt"

// ValidateOutput contains the result of ValidateText.
type ValidateOutput struct {
	Filename string          `json:"filename"`
	Valid    bool            `json:"valid"`
	Errors   []string        `json:"errors"`
	Prompts  []prompt.Prompt `json:"prompts"`
}

// ValidateText parses and validates a markdown document.
func ValidateText(content, filename string) *ValidateOutput {
	doc := prompt.Parse(content, filename)
	valid, errs := prompt.Validate(doc.Prompts)
	if errs == nil {
		errs = []string{}
	}
	return &ValidateOutput{Filename: doc.Filename, Valid: valid, Errors: errs, Prompts: doc.Prompts}
}

// AnalyzeDocument scores every prompt in doc.
func AnalyzeDocument(ctx context.Context, cfg *config.Config, doc *prompt.Document) (*ReportOutput, error) {
	if len(doc.Prompts) == 0 {
		return nil, errors.NewNoPrompts(doc.Filename)
	}
	results, err := heuristics.AnalyzeAll(ctx, doc.Prompts, cfg)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return NewReport(doc.Filename, doc.Prompts, results, cfg), nil
}

// Check scores a single prompt given as raw text.
func Check(cfg *config.Config, input InlineInput) (*ReportEntry, error) {
	p, err := inlinePrompt(input, DefaultCheckName)
	if err != nil {
		return nil, err
	}
	entry := Summarize(p, heuristics.Analyze(&p, cfg), cfg)
	return &entry, nil
}
