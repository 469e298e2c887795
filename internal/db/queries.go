package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/llm"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// JobStatus is the lifecycle state of an LLM analysis job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job is one background LLM analysis of a prompt.
type Job struct {
	ID        string
	PromptID  string
	Status    JobStatus
	Error     string
	Result    *llm.Analysis // set when Status is completed
	CreatedAt int64
	UpdatedAt int64
}

// ReplaceDocument makes doc the current document. The previous prompts and
// their cached heuristic results are removed; LLM jobs are kept so their
// status stays queryable.
func ReplaceDocument(ctx context.Context, db *sql.DB, doc *prompt.Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()

	if _, err := tx.ExecContext(ctx, "DELETE FROM prompts"); err != nil {
		return errors.NewInternal(err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, filename, loaded_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET filename = excluded.filename, loaded_at = excluded.loaded_at
	`, doc.Filename, now); err != nil {
		return errors.NewInternal(err)
	}

	for i := range doc.Prompts {
		p := &doc.Prompts[i]
		meta, err := metadataJSON(p.Metadata)
		if err != nil {
			return errors.NewInternal(err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO prompts (id, position, name, type, content, line_start, line_end, metadata_json, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, i, p.Name, string(p.Type), p.Content, p.LineStart, p.LineEnd, meta, now); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// CurrentFilename returns the name of the loaded document, or "" when nothing is loaded.
func CurrentFilename(ctx context.Context, db *sql.DB) (string, error) {
	var filename string
	err := db.QueryRowContext(ctx, "SELECT filename FROM documents WHERE id = 1").Scan(&filename)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return filename, nil
}

// ListPrompts returns the current prompts in document order.
func ListPrompts(ctx context.Context, db *sql.DB) ([]prompt.Prompt, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, type, content, line_start, line_end, metadata_json
		FROM prompts
		ORDER BY position
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	prompts := []prompt.Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		prompts = append(prompts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return prompts, nil
}

// GetPrompt retrieves a prompt by ID.
func GetPrompt(ctx context.Context, db *sql.DB, id string) (*prompt.Prompt, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, name, type, content, line_start, line_end, metadata_json
		FROM prompts
		WHERE id = ?
	`, id)

	p, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("prompt", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return p, nil
}

// UpdatePromptContent replaces a prompt's content and drops its cached
// heuristic result.
func UpdatePromptContent(ctx context.Context, db *sql.DB, id, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "UPDATE prompts SET content = ?, updated_at = ? WHERE id = ?",
		content, time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("prompt", id)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM heuristic_results WHERE prompt_id = ?", id); err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SaveHeuristic caches a heuristic result, replacing any earlier one.
func SaveHeuristic(ctx context.Context, db *sql.DB, r *heuristics.Result) error {
	data, err := json.Marshal(r)
	if err != nil {
		return errors.NewInternal(err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO heuristic_results (prompt_id, result_json, created_at) VALUES (?, ?, ?)
		ON CONFLICT(prompt_id) DO UPDATE SET result_json = excluded.result_json, created_at = excluded.created_at
	`, r.PromptID, string(data), time.Now().Unix())
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetHeuristic returns the cached heuristic result for a prompt.
// Returns NOT_FOUND when nothing is cached.
func GetHeuristic(ctx context.Context, db *sql.DB, promptID string) (*heuristics.Result, error) {
	var data string
	err := db.QueryRowContext(ctx, "SELECT result_json FROM heuristic_results WHERE prompt_id = ?", promptID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("heuristic result", promptID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var r heuristics.Result
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &r, nil
}

// InsertJob records a new LLM job.
func InsertJob(ctx context.Context, db *sql.DB, job *Job) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO llm_jobs (id, prompt_id, status, error, result_json, created_at, updated_at)
		VALUES (?, ?, ?, NULL, NULL, ?, ?)
	`, job.ID, job.PromptID, string(job.Status), job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// UpdateJob stores a job's status, error message and result.
func UpdateJob(ctx context.Context, db *sql.DB, job *Job) error {
	var result sql.NullString
	if job.Result != nil {
		data, err := json.Marshal(job.Result)
		if err != nil {
			return errors.NewInternal(err)
		}
		result = sql.NullString{String: string(data), Valid: true}
	}

	job.UpdatedAt = time.Now().Unix()
	res, err := db.ExecContext(ctx, `
		UPDATE llm_jobs SET status = ?, error = ?, result_json = ?, updated_at = ? WHERE id = ?
	`, string(job.Status), toNullString(job.Error), result, job.UpdatedAt, job.ID)
	if err != nil {
		return errors.NewInternal(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFound("job", job.ID)
	}
	return nil
}

// GetJob retrieves a job by ID.
func GetJob(ctx context.Context, db *sql.DB, id string) (*Job, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, prompt_id, status, error, result_json, created_at, updated_at
		FROM llm_jobs WHERE id = ?
	`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("job", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return job, nil
}

// LatestJobForPrompt returns the most recently started job for a prompt.
func LatestJobForPrompt(ctx context.Context, db *sql.DB, promptID string) (*Job, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, prompt_id, status, error, result_json, created_at, updated_at
		FROM llm_jobs WHERE prompt_id = ?
		ORDER BY id DESC
		LIMIT 1
	`, promptID)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("llm analysis", promptID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return job, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (*prompt.Prompt, error) {
	var (
		p        prompt.Prompt
		kind     string
		metaJSON sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &kind, &p.Content, &p.LineStart, &p.LineEnd, &metaJSON); err != nil {
		return nil, err
	}
	p.Type = prompt.Kind(kind)

	if metaJSON.Valid {
		var meta prompt.Metadata
		if err := json.Unmarshal([]byte(metaJSON.String), &meta); err != nil {
			return nil, err
		}
		p.Metadata = &meta
	}
	return &p, nil
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job        Job
		status     string
		errMsg     sql.NullString
		resultJSON sql.NullString
	)
	if err := row.Scan(&job.ID, &job.PromptID, &status, &errMsg, &resultJSON, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	job.Status = JobStatus(status)
	job.Error = errMsg.String

	if resultJSON.Valid {
		var a llm.Analysis
		if err := json.Unmarshal([]byte(resultJSON.String), &a); err != nil {
			return nil, err
		}
		job.Result = &a
	}
	return &job, nil
}

func metadataJSON(meta *prompt.Metadata) (sql.NullString, error) {
	if meta == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// toNullString converts empty strings to SQL NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
