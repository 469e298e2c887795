package prompt

import (
	"strings"
	"testing"
)

func TestToMarkdown_Format(t *testing.T) {
	prompts := []Prompt{
		{Name: "System Prompt", Type: KindSystem, Content: "You are helpful."},
		{Name: "Ask", Type: KindUser, Content: "What is Go?"},
	}

	got := ToMarkdown(prompts, nil)
	want := "# Exported Prompts\n\n## System Prompt\n\nYou are helpful.\n\n\n## User Prompt: Ask\n\nWhat is Go?\n\n"
	if got != want {
		t.Errorf("ToMarkdown() =\n%q\nwant\n%q", got, want)
	}
}

func TestToMarkdown_SkillBecomesSystem(t *testing.T) {
	got := ToMarkdown([]Prompt{{Name: "greeter", Type: KindSkill, Content: "Say hello warmly."}}, nil)
	if !strings.Contains(got, "## System Prompt: greeter\n") {
		t.Errorf("ToMarkdown() = %q", got)
	}
}

func TestToMarkdown_RoundTrip(t *testing.T) {
	src := "## System Prompt: Reviewer\nYou are a reviewer.\n\n### Checklist\n- correctness\n\n## User Prompt\nReview this diff please.\n"
	doc := Parse(src, "src.md")

	again := Parse(ToMarkdown(doc.Prompts, nil), "export.md")
	if len(again.Prompts) != len(doc.Prompts) {
		t.Fatalf("round trip prompts = %d, want %d", len(again.Prompts), len(doc.Prompts))
	}
	for i := range doc.Prompts {
		a, b := doc.Prompts[i], again.Prompts[i]
		if a.Name != b.Name || a.Type != b.Type || a.Content != b.Content {
			t.Errorf("prompt %d: got (%q,%q,%q), want (%q,%q,%q)", i, b.Name, b.Type, b.Content, a.Name, a.Type, a.Content)
		}
	}
}

func TestToMarkdown_Annotator(t *testing.T) {
	prompts := []Prompt{
		{Name: "A", Type: KindUser, Content: "first body"},
		{Name: "B", Type: KindUser, Content: "second body"},
	}
	got := ToMarkdown(prompts, func(p Prompt) string {
		if p.Name == "A" {
			return "<!-- score: 72 -->"
		}
		return ""
	})

	if !strings.Contains(got, "first body\n\n<!-- score: 72 -->\n") {
		t.Errorf("annotation missing: %q", got)
	}
	if strings.Count(got, "<!--") != 1 {
		t.Errorf("expected a single annotation: %q", got)
	}
}
