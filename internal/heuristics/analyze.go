// Package heuristics scores prompts on six quality dimensions without any
// model calls. Every function here is pure: results depend only on the prompt
// and the rule set, so prompts and dimensions can be scored concurrently.
package heuristics

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// Analyze runs all six dimension analyzers and aggregates the overall score.
func Analyze(p *prompt.Prompt, cfg *config.Config) *Result {
	r := &Result{
		PromptID:     p.ID,
		Clarity:      Clarity(p, cfg),
		Specificity:  Specificity(p, cfg),
		Structure:    Structure(p, cfg),
		Completeness: Completeness(p, cfg),
		OutputFormat: OutputFormat(p, cfg),
		Guardrails:   Guardrails(p, cfg),
	}
	r.OverallScore = Aggregate(r, p.Type, cfg)
	return r
}

// Aggregate computes the weighted mean of the dimension scores, truncated to an int.
// Guardrails is weighted by kind: guardrails_system for system/skill prompts,
// guardrails_user for user prompts. All-zero weights yield 0.
func Aggregate(r *Result, kind prompt.Kind, cfg *config.Config) int {
	w := cfg.Weights
	guardrails := w.GuardrailsUser
	if kind.SystemLike() {
		guardrails = w.GuardrailsSystem
	}

	total := w.Clarity + w.Specificity + w.Structure + w.Completeness + w.OutputFormat + guardrails
	if total <= 0 {
		return 0
	}

	sum := float64(r.Clarity.Score)*w.Clarity +
		float64(r.Specificity.Score)*w.Specificity +
		float64(r.Structure.Score)*w.Structure +
		float64(r.Completeness.Score)*w.Completeness +
		float64(r.OutputFormat.Score)*w.OutputFormat +
		float64(r.Guardrails.Score)*guardrails

	return int(sum / total)
}

// AnalyzeAll scores prompts in parallel. Results are in the same order as prompts.
// It stops early and returns ctx.Err() if ctx is cancelled.
func AnalyzeAll(ctx context.Context, prompts []prompt.Prompt, cfg *config.Config) ([]*Result, error) {
	results := make([]*Result, len(prompts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range prompts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Analyze(&prompts[i], cfg)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
