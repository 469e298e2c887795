package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/db"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
)

// RunHeuristics scores a prompt and caches the result.
func RunHeuristics(ctx context.Context, database *sql.DB, cfg *config.Config, promptID string) (*heuristics.Result, error) {
	p, err := Get(ctx, database, promptID)
	if err != nil {
		return nil, err
	}

	r := heuristics.Analyze(p, cfg)
	if err := db.SaveHeuristic(ctx, database, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetHeuristics returns the cached result for a prompt, scoring it first
// when nothing is cached.
func GetHeuristics(ctx context.Context, database *sql.DB, cfg *config.Config, promptID string) (*heuristics.Result, error) {
	r, err := db.GetHeuristic(ctx, database, promptID)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	return RunHeuristics(ctx, database, cfg, promptID)
}
