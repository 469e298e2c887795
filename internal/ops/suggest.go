package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/prompteval/internal/db"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/llm"
)

// SuggestInput contains parameters for the Suggest operation.
type SuggestInput struct {
	PromptID   string   `json:"prompt_id"`
	FocusAreas []string `json:"focus_areas,omitempty"`
}

// Suggest asks the model for an improved version of a prompt. A cached
// heuristic result, if any, is passed along as context.
func Suggest(ctx context.Context, database *sql.DB, analyzer llm.Analyzer, input SuggestInput) (*llm.Suggestion, error) {
	if analyzer == nil {
		return nil, errors.NewLLMUnavailable("LLM suggestions are not configured; set ANTHROPIC_API_KEY")
	}
	focus, err := normalizeFocus(input.FocusAreas)
	if err != nil {
		return nil, err
	}

	p, err := Get(ctx, database, input.PromptID)
	if err != nil {
		return nil, err
	}

	h, err := db.GetHeuristic(ctx, database, p.ID)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	return analyzer.Suggest(ctx, p, h, focus)
}

// normalizeFocus lowercases focus areas and rejects unknown dimensions.
func normalizeFocus(areas []string) ([]string, error) {
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		name := strings.ToLower(strings.TrimSpace(a))
		if name == "" {
			continue
		}
		if (&heuristics.Result{}).Dimension(name) == nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("Unknown focus area '%s'. Use one of: %s",
				a, strings.Join(heuristics.Dimensions, ", ")))
		}
		out = append(out, name)
	}
	return out, nil
}
