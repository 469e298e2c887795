package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/llm"
	"github.com/hpungsan/prompteval/internal/prompt"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const sampleDoc = `## System Prompt: Reviewer
You are a code reviewer.

## User Prompt: Ask
Review this function for bugs.
`

func loadSample(t *testing.T, db *sql.DB) *prompt.Document {
	t.Helper()
	doc := prompt.Parse(sampleDoc, "sample.md")
	if err := ReplaceDocument(context.Background(), db, doc); err != nil {
		t.Fatalf("ReplaceDocument() error = %v", err)
	}
	return doc
}

func TestReplaceDocument_ListAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	doc := loadSample(t, db)

	prompts, err := ListPrompts(ctx, db)
	if err != nil {
		t.Fatalf("ListPrompts() error = %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("len(prompts) = %d, want 2", len(prompts))
	}
	if prompts[0].Name != "Reviewer" || prompts[1].Name != "Ask" {
		t.Errorf("order = %q, %q", prompts[0].Name, prompts[1].Name)
	}

	got, err := GetPrompt(ctx, db, doc.Prompts[1].ID)
	if err != nil {
		t.Fatalf("GetPrompt() error = %v", err)
	}
	if got.Content != doc.Prompts[1].Content || got.LineStart != doc.Prompts[1].LineStart {
		t.Errorf("GetPrompt() = %+v", got)
	}

	filename, err := CurrentFilename(ctx, db)
	if err != nil {
		t.Fatalf("CurrentFilename() error = %v", err)
	}
	if filename != "sample.md" {
		t.Errorf("CurrentFilename() = %q, want sample.md", filename)
	}
}

func TestReplaceDocument_ClearsPrevious(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	first := loadSample(t, db)

	if err := SaveHeuristic(ctx, db, &heuristics.Result{PromptID: first.Prompts[0].ID}); err != nil {
		t.Fatalf("SaveHeuristic() error = %v", err)
	}

	second := prompt.Parse("## User Prompt\nSomething else entirely.\n", "other.md")
	if err := ReplaceDocument(ctx, db, second); err != nil {
		t.Fatalf("ReplaceDocument() error = %v", err)
	}

	prompts, _ := ListPrompts(ctx, db)
	if len(prompts) != 1 || prompts[0].ID != second.Prompts[0].ID {
		t.Errorf("prompts = %+v", prompts)
	}
	if _, err := GetPrompt(ctx, db, first.Prompts[0].ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("old prompt still present: %v", err)
	}
	if _, err := GetHeuristic(ctx, db, first.Prompts[0].ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("old heuristic cache still present: %v", err)
	}
}

func TestCurrentFilename_Empty(t *testing.T) {
	db := setupTestDB(t)
	name, err := CurrentFilename(context.Background(), db)
	if err != nil || name != "" {
		t.Errorf("CurrentFilename() = %q, %v; want empty", name, err)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	doc := prompt.Parse("---\nname: Greeter\ndescription: says hello\ntags: [a, b]\nmodel: opus\nteam: core\n---\nSay hello warmly.\n", "greeter.md")
	if err := ReplaceDocument(ctx, db, doc); err != nil {
		t.Fatalf("ReplaceDocument() error = %v", err)
	}

	got, err := GetPrompt(ctx, db, doc.Prompts[0].ID)
	if err != nil {
		t.Fatalf("GetPrompt() error = %v", err)
	}
	if got.Type != prompt.KindSkill {
		t.Errorf("Type = %q, want skill", got.Type)
	}
	if got.Metadata == nil || *got.Metadata.Name != "Greeter" {
		t.Fatalf("Metadata = %+v", got.Metadata)
	}
	if len(got.Metadata.Tags) != 2 {
		t.Errorf("Tags = %v", got.Metadata.Tags)
	}
	if got.Metadata.Extra.Oldest().Key != "model" || got.Metadata.Extra.Newest().Key != "team" {
		t.Errorf("Extra order lost")
	}
}

func TestGetPrompt_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := GetPrompt(context.Background(), db, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetPrompt() error = %v, want NOT_FOUND", err)
	}
}

func TestUpdatePromptContent_InvalidatesHeuristic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	doc := loadSample(t, db)
	id := doc.Prompts[0].ID

	r := heuristics.Analyze(&doc.Prompts[0], config.Default())
	if err := SaveHeuristic(ctx, db, r); err != nil {
		t.Fatalf("SaveHeuristic() error = %v", err)
	}

	if err := UpdatePromptContent(ctx, db, id, "You are a strict code reviewer."); err != nil {
		t.Fatalf("UpdatePromptContent() error = %v", err)
	}

	got, _ := GetPrompt(ctx, db, id)
	if got.Content != "You are a strict code reviewer." {
		t.Errorf("Content = %q", got.Content)
	}
	if got.Name != "Reviewer" {
		t.Errorf("Name = %q, want Reviewer", got.Name)
	}
	if _, err := GetHeuristic(ctx, db, id); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("heuristic cache should be invalidated, got %v", err)
	}

	if err := UpdatePromptContent(ctx, db, "missing", "x"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdatePromptContent(missing) error = %v", err)
	}
}

func TestHeuristicCache(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	doc := loadSample(t, db)

	r := heuristics.Analyze(&doc.Prompts[0], config.Default())
	if err := SaveHeuristic(ctx, db, r); err != nil {
		t.Fatalf("SaveHeuristic() error = %v", err)
	}
	// Saving again replaces.
	if err := SaveHeuristic(ctx, db, r); err != nil {
		t.Fatalf("SaveHeuristic() second error = %v", err)
	}

	got, err := GetHeuristic(ctx, db, r.PromptID)
	if err != nil {
		t.Fatalf("GetHeuristic() error = %v", err)
	}
	if got.OverallScore != r.OverallScore || got.Guardrails.Score != r.Guardrails.Score {
		t.Errorf("GetHeuristic() = %+v, want %+v", got, r)
	}
	if len(got.Completeness.Issues) != len(r.Completeness.Issues) {
		t.Errorf("issues lost in round trip")
	}
}

func TestJobs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().Unix()

	first := &Job{ID: prompt.NewID(), PromptID: "p1", Status: JobPending, CreatedAt: now, UpdatedAt: now}
	if err := InsertJob(ctx, db, first); err != nil {
		t.Fatalf("InsertJob() error = %v", err)
	}
	second := &Job{ID: prompt.NewID(), PromptID: "p1", Status: JobPending, CreatedAt: now, UpdatedAt: now}
	if err := InsertJob(ctx, db, second); err != nil {
		t.Fatalf("InsertJob() error = %v", err)
	}

	rev := "Better prompt."
	second.Status = JobCompleted
	second.Result = &llm.Analysis{Ambiguities: []string{"x"}, MissingContext: []string{}, InjectionRisks: []string{}, BestPracticeIssues: []string{}, SuggestedRevision: &rev}
	if err := UpdateJob(ctx, db, second); err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}

	first.Status = JobFailed
	first.Error = "boom"
	if err := UpdateJob(ctx, db, first); err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}

	got, err := GetJob(ctx, db, first.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != JobFailed || got.Error != "boom" || got.Result != nil {
		t.Errorf("GetJob() = %+v", got)
	}

	latest, err := LatestJobForPrompt(ctx, db, "p1")
	if err != nil {
		t.Fatalf("LatestJobForPrompt() error = %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest = %s, want %s", latest.ID, second.ID)
	}
	if latest.Result == nil || *latest.Result.SuggestedRevision != rev {
		t.Errorf("Result = %+v", latest.Result)
	}

	if _, err := GetJob(ctx, db, "nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetJob(nope) error = %v", err)
	}
	if _, err := LatestJobForPrompt(ctx, db, "p2"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("LatestJobForPrompt(p2) error = %v", err)
	}
	if err := UpdateJob(ctx, db, &Job{ID: "nope", Status: JobRunning}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateJob(nope) error = %v", err)
	}
}
