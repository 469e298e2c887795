package heuristics

import (
	"strings"
	"testing"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/prompt"
)

func TestClarity_LongSentence(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("cat ", 45)) + "."
	p := newPrompt(prompt.KindUser, "Short line.\n"+long)
	p.LineStart = 10

	ds := Clarity(p, config.Default())

	if !hasIssue(ds, "Overly long sentence (45 words)") {
		t.Fatalf("issues = %+v", ds.Issues)
	}
	is := ds.Issues[0]
	if is.Line == nil || *is.Line != 11 {
		t.Errorf("Line = %v, want 11", is.Line)
	}
	if is.Snippet == nil || !strings.HasSuffix(*is.Snippet, "...") {
		t.Errorf("Snippet = %v, want truncated", is.Snippet)
	}
	if len(ds.Suggestions) == 0 || ds.Suggestions[0] != "Break long sentences into shorter, clearer ones" {
		t.Errorf("Suggestions = %v", ds.Suggestions)
	}
}

func TestClarity_PassiveVoiceThreshold(t *testing.T) {
	two := "The file is parsed.\nThe data was checked."
	if ds := Clarity(newPrompt(prompt.KindUser, two), config.Default()); hasIssue(ds, "Passive voice") {
		t.Error("two passive lines should not be flagged")
	}

	four := "The file is parsed.\nThe data was checked.\nThe rows were counted.\nThe report is printed."
	ds := Clarity(newPrompt(prompt.KindUser, four), config.Default())

	n := 0
	for _, is := range ds.Issues {
		if is.Message == "Passive voice construction" {
			n++
		}
	}
	if n != 3 {
		t.Errorf("passive issues = %d, want 3 (first three reported)", n)
	}
}

func TestClarity_Pronouns(t *testing.T) {
	content := "Read it.\nKeep this.\nUse that.\nSee these.\nFix those.\nShip it."
	p := newPrompt(prompt.KindUser, content)
	p.LineStart = 3

	ds := Clarity(p, config.Default())
	if !hasIssue(ds, "High use of pronouns (6) may cause ambiguity") {
		t.Fatalf("issues = %+v", ds.Issues)
	}
	for _, is := range ds.Issues {
		if strings.HasPrefix(is.Message, "High use of pronouns") && (is.Line == nil || *is.Line != 3) {
			t.Errorf("pronoun issue Line = %v, want 3", is.Line)
		}
	}
}

func TestClarity_PenaltyCapped(t *testing.T) {
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, strings.TrimSpace(strings.Repeat("cat ", 45))+".")
	}
	ds := Clarity(newPrompt(prompt.KindUser, strings.Join(lines, "\n")), config.Default())

	// Ten long sentences would be a 50 point penalty; it is capped at 30.
	if ds.Score < 95-30 {
		t.Errorf("Score = %d, penalty should be capped at 30", ds.Score)
	}
}

func TestSpecificity_VagueTerms(t *testing.T) {
	content := "Give a good answer.\nA good, nice reply is best, good.\nFor example, list 3 items."
	ds := Specificity(newPrompt(prompt.KindUser, content), config.Default())

	// good (2 lines) + nice + best
	if len(ds.Issues) != 4 {
		t.Fatalf("issues = %+v, want 4", ds.Issues)
	}
	if ds.Issues[0].Message != "Vague term: 'good'" || *ds.Issues[0].Line != 1 {
		t.Errorf("first issue = %+v", ds.Issues[0])
	}
	if ds.Score != 80 {
		t.Errorf("Score = %d, want 80", ds.Score)
	}
	if len(ds.Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want one per condition", ds.Suggestions)
	}
}

func TestSpecificity_WholeWordsOnly(t *testing.T) {
	ds := Specificity(newPrompt(prompt.KindUser, "Goodness, the brightness is finer. For example 2."), config.Default())
	if hasIssue(ds, "Vague term") {
		t.Errorf("substring matches should not count: %+v", ds.Issues)
	}
}

func TestSpecificity_MissingExamplesAndNumbers(t *testing.T) {
	ds := Specificity(newPrompt(prompt.KindUser, "Summarize the article clearly."), config.Default())
	if ds.Score != 75 {
		t.Errorf("Score = %d, want 75", ds.Score)
	}
	if !hasIssue(ds, "No examples provided") || !hasIssue(ds, "No quantifiable criteria found") {
		t.Errorf("issues = %+v", ds.Issues)
	}
}

func TestSpecificity_QuantityPhrase(t *testing.T) {
	ds := Specificity(newPrompt(prompt.KindUser, "Use at least three sources."), config.Default())
	if hasIssue(ds, "No quantifiable criteria") {
		t.Error("'at least' should count as a quantity")
	}
	if ds.Score != 85 {
		t.Errorf("Score = %d, want 85", ds.Score)
	}
}

func TestStructure_LongUnstructured(t *testing.T) {
	content := strings.TrimSpace(strings.Repeat("word ", 120))
	ds := Structure(newPrompt(prompt.KindUser, content), config.Default())

	for _, want := range []string{
		"Long prompt lacks organizational structure",
		"No clear sequence or flow indicators",
		"Dense text block without paragraph breaks",
	} {
		if !hasIssue(ds, want) {
			t.Errorf("missing issue %q", want)
		}
	}
	if ds.Score != 30 {
		t.Errorf("Score = %d, want 30", ds.Score)
	}
}

func TestStructure_DenseBlockBoundary(t *testing.T) {
	tests := []struct {
		words     int
		wantDense bool
	}{
		{79, false},
		{80, false},
		{81, true},
	}

	for _, tt := range tests {
		content := strings.TrimSpace(strings.Repeat("word ", tt.words))
		ds := Structure(newPrompt(prompt.KindUser, content), config.Default())
		if got := hasIssue(ds, "Dense text block"); got != tt.wantDense {
			t.Errorf("%d words: dense issue = %v, want %v", tt.words, got, tt.wantDense)
		}
	}
}

func TestStructure_Bulleted(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, "- alpha beta gamma delta")
	}
	ds := Structure(newPrompt(prompt.KindUser, strings.Join(lines, "\n")), config.Default())

	if ds.Score != 85 {
		t.Errorf("Score = %d, want 85 (95 base, missing flow)", ds.Score)
	}
}

func TestStructure_Short(t *testing.T) {
	ds := Structure(newPrompt(prompt.KindUser, "Say hi."), config.Default())
	if ds.Score != 100 || len(ds.Issues) != 0 {
		t.Errorf("Score = %d, issues = %+v", ds.Score, ds.Issues)
	}
}

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name      string
		kind      prompt.Kind
		content   string
		wantScore int
		wantIssue string
	}{
		{"tiny user prompt with task", prompt.KindUser, "Write a haiku.", 18, "Prompt is very short (3 words)"},
		{"system without role or task", prompt.KindSystem, "Respond in French to everything.", 0, "No clear role or persona defined"},
		{"user prompt skips role check", prompt.KindUser, "Respond in French to everything.", 6, "No clear task or objective stated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := Completeness(newPrompt(tt.kind, tt.content), config.Default())
			if ds.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d (issues %+v)", ds.Score, tt.wantScore, ds.Issues)
			}
			if !hasIssue(ds, tt.wantIssue) {
				t.Errorf("missing issue %q in %+v", tt.wantIssue, ds.Issues)
			}
		})
	}
}

func TestCompleteness_SuggestionUsesThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.Thresholds.MinWordCount = 50
	ds := Completeness(newPrompt(prompt.KindUser, "Write a haiku."), cfg)

	found := false
	for _, s := range ds.Suggestions {
		if s == "Consider expanding to at least 50 words" {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggestions = %v", ds.Suggestions)
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"Return the result as JSON in a brief summary.", 100},
		{"Give me a list of cats.", 60},
		{"Tell me about cats.", 35},
	}

	for _, tt := range tests {
		ds := OutputFormat(newPrompt(prompt.KindUser, tt.content), config.Default())
		if ds.Score != tt.want {
			t.Errorf("OutputFormat(%q) = %d, want %d (issues %+v)", tt.content, ds.Score, tt.want, ds.Issues)
		}
	}
}

func TestGuardrails(t *testing.T) {
	tests := []struct {
		name       string
		kind       prompt.Kind
		content    string
		wantScore  int
		wantIssues int
	}{
		{"user without markers", prompt.KindUser, "Tell me a joke.", 70, 1},
		{"user with markers", prompt.KindUser, "Only tell one joke.", 80, 0},
		{"system complete", prompt.KindSystem, "You are a support bot. Only discuss billing. If unsure, never guess.", 100, 0},
		{"system bare", prompt.KindSystem, "You are a poet. Write verses.", 10, 3},
		{"skill treated as system", prompt.KindSkill, "You are a poet. Write verses.", 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := Guardrails(newPrompt(tt.kind, tt.content), config.Default())
			if ds.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", ds.Score, tt.wantScore)
			}
			if len(ds.Issues) != tt.wantIssues {
				t.Errorf("issues = %+v, want %d", ds.Issues, tt.wantIssues)
			}
		})
	}
}

func TestFleschReadingEase(t *testing.T) {
	easy := FleschReadingEase("The cat sat on the mat.")
	if easy < 90 {
		t.Errorf("easy text = %.1f, want >= 90", easy)
	}

	hard := FleschReadingEase("Institutionalization of interdisciplinary methodologies necessitates comprehensive organizational transformation.")
	if hard >= 30 {
		t.Errorf("hard text = %.1f, want < 30", hard)
	}

	if got := FleschReadingEase(""); got != 206.835 {
		t.Errorf("empty text = %v, want 206.835", got)
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"make", 1},
		{"table", 2},
		{"assistant", 3},
		{"rhythm", 1},
		{"123", 0},
	}
	for _, tt := range tests {
		if got := countSyllables(tt.word); got != tt.want {
			t.Errorf("countSyllables(%q) = %d, want %d", tt.word, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("héllo wörld", 5); got != "héllo..." {
		t.Errorf("truncate() = %q, want héllo...", got)
	}
}
