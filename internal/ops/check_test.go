package ops

import (
	"context"
	"testing"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/prompt"
)

func TestValidateText(t *testing.T) {
	out := ValidateText(sampleDoc, "sample.md")
	if !out.Valid || len(out.Errors) != 0 || len(out.Prompts) != 2 {
		t.Errorf("ValidateText(sample) = %+v", out)
	}

	out = ValidateText("## User Prompt\nHi.\n", "")
	if out.Valid || len(out.Errors) != 1 {
		t.Errorf("ValidateText(short) = %+v", out)
	}
	if out.Filename != prompt.DefaultFilename {
		t.Errorf("Filename = %q", out.Filename)
	}

	out = ValidateText("plain text", "notes.md")
	if out.Valid || len(out.Prompts) != 0 {
		t.Errorf("ValidateText(none) = %+v", out)
	}
}

func TestAnalyzeDocument(t *testing.T) {
	cfg := config.Default()
	doc := prompt.Parse(sampleDoc, "sample.md")

	rep, err := AnalyzeDocument(context.Background(), cfg, doc)
	if err != nil {
		t.Fatalf("AnalyzeDocument() error = %v", err)
	}
	if len(rep.Entries) != 2 || rep.Entries[0].Prompt.ID != doc.Prompts[0].ID {
		t.Fatalf("entries = %+v", rep.Entries)
	}
	if rep.Entries[0].Result.PromptID != doc.Prompts[0].ID {
		t.Errorf("result not paired with its prompt")
	}

	_, err = AnalyzeDocument(context.Background(), cfg, prompt.Parse("", "empty.md"))
	if !errors.Is(err, errors.ErrNoPrompts) {
		t.Errorf("AnalyzeDocument(empty) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := AnalyzeDocument(ctx, cfg, doc); err == nil {
		t.Error("AnalyzeDocument() with cancelled context should fail")
	}
}

func TestCheck(t *testing.T) {
	cfg := config.Default()

	entry, err := Check(cfg, InlineInput{Content: "You are a tutor.\nExplain fractions.", Type: "system"})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if entry.Prompt.Name != DefaultCheckName || entry.Prompt.Type != prompt.KindSystem {
		t.Errorf("Prompt = %+v", entry.Prompt)
	}
	if entry.Prompt.LineEnd != 2 {
		t.Errorf("LineEnd = %d, want 2", entry.Prompt.LineEnd)
	}
	if entry.Label != cfg.Label(entry.Result.OverallScore) {
		t.Errorf("Label = %q", entry.Label)
	}

	if _, err := Check(cfg, InlineInput{Content: "text", Type: "tool"}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Check(bad type) error = %v", err)
	}
}
