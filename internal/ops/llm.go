package ops

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/prompteval/internal/db"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/llm"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// DefaultJobTimeout bounds a single background LLM analysis.
const DefaultJobTimeout = 2 * time.Minute

// JobOutput describes an LLM analysis job.
type JobOutput struct {
	JobID    string        `json:"job_id"`
	PromptID string        `json:"prompt_id"`
	Status   db.JobStatus  `json:"status"`
	Error    string        `json:"error,omitempty"`
	Result   *llm.Analysis `json:"result,omitempty"`
}

// LLMResultOutput is a completed LLM analysis of a prompt.
type LLMResultOutput struct {
	PromptID string       `json:"prompt_id"`
	JobID    string       `json:"job_id"`
	Status   db.JobStatus `json:"status"`
	*llm.Analysis
}

// JobRunner runs LLM analyses in the background and records their progress
// in the session database. A nil analyzer means no LLM is configured.
type JobRunner struct {
	database *sql.DB
	analyzer llm.Analyzer
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewJobRunner creates a JobRunner. analyzer may be nil.
func NewJobRunner(database *sql.DB, analyzer llm.Analyzer) *JobRunner {
	return &JobRunner{database: database, analyzer: analyzer, timeout: DefaultJobTimeout}
}

// Analyzer returns the configured analyzer, or LLM_UNAVAILABLE.
func (r *JobRunner) Analyzer() (llm.Analyzer, error) {
	if r.analyzer == nil {
		return nil, errors.NewLLMUnavailable("LLM analysis is not configured; set ANTHROPIC_API_KEY")
	}
	return r.analyzer, nil
}

// StartLLMAnalysis queues an analysis of a prompt and returns immediately
// with a pending job. The job outlives ctx.
func (r *JobRunner) StartLLMAnalysis(ctx context.Context, promptID string) (*JobOutput, error) {
	analyzer, err := r.Analyzer()
	if err != nil {
		return nil, err
	}
	p, err := Get(ctx, r.database, promptID)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	job := &db.Job{
		ID:        prompt.NewID(),
		PromptID:  p.ID,
		Status:    db.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.InsertJob(ctx, r.database, job); err != nil {
		return nil, err
	}

	out := &JobOutput{JobID: job.ID, PromptID: job.PromptID, Status: db.JobPending}

	// run owns its copy of the job from here on.
	running := *job
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(context.WithoutCancel(ctx), analyzer, &running, p)
	}()

	return out, nil
}

func (r *JobRunner) run(ctx context.Context, analyzer llm.Analyzer, job *db.Job, p *prompt.Prompt) {
	logger := log.With().Str("job", job.ID).Str("prompt", p.ID).Logger()

	job.Status = db.JobRunning
	if err := db.UpdateJob(ctx, r.database, job); err != nil {
		logger.Error().Err(err).Msg("failed to mark job running")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	analysis, err := analyzer.Analyze(ctx, p)
	if err != nil {
		job.Status = db.JobFailed
		job.Error = errors.As(err).Message
		logger.Warn().Err(err).Msg("llm analysis failed")
	} else {
		job.Status = db.JobCompleted
		job.Result = analysis
		logger.Debug().Int("findings", analysis.FindingCount()).Msg("llm analysis completed")
	}

	if err := db.UpdateJob(context.WithoutCancel(ctx), r.database, job); err != nil {
		logger.Error().Err(err).Msg("failed to record job result")
	}
}

// Wait blocks until all started jobs have finished.
func (r *JobRunner) Wait() {
	r.wg.Wait()
}

// LLMStatus reports a job's status, with its result once completed.
func LLMStatus(ctx context.Context, database *sql.DB, jobID string) (*JobOutput, error) {
	job, err := db.GetJob(ctx, database, jobID)
	if err != nil {
		return nil, err
	}
	out := &JobOutput{JobID: job.ID, PromptID: job.PromptID, Status: job.Status, Error: job.Error}
	if job.Status == db.JobCompleted {
		out.Result = job.Result
	}
	return out, nil
}

// LLMResult returns the latest analysis of a prompt. It fails with NOT_FOUND
// when no analysis was started and NOT_READY until the latest one completes.
func LLMResult(ctx context.Context, database *sql.DB, promptID string) (*LLMResultOutput, error) {
	job, err := db.LatestJobForPrompt(ctx, database, promptID)
	if err != nil {
		return nil, err
	}
	if job.Status != db.JobCompleted || job.Result == nil {
		return nil, errors.NewNotReady(string(job.Status))
	}
	return &LLMResultOutput{PromptID: job.PromptID, JobID: job.ID, Status: job.Status, Analysis: job.Result}, nil
}
