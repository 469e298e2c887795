package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	evalerrors "github.com/hpungsan/prompteval/internal/errors"
)

func writeRules(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Thresholds.MinWordCount != 20 || cfg.Thresholds.MaxSentenceLength != 40 {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Weights.GuardrailsSystem != 1.2 || cfg.Weights.GuardrailsUser != 0.6 {
		t.Errorf("guardrail weights = %v/%v", cfg.Weights.GuardrailsSystem, cfg.Weights.GuardrailsUser)
	}
	if len(cfg.VagueTerms) != 20 {
		t.Errorf("len(VagueTerms) = %d, want 20", len(cfg.VagueTerms))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLabel(t *testing.T) {
	cfg := Default()
	tests := []struct {
		score int
		want  string
	}{
		{100, "excellent"},
		{80, "excellent"},
		{79, "good"},
		{60, "good"},
		{59, "fair"},
		{40, "fair"},
		{39, "poor"},
		{0, "poor"},
	}

	for _, tt := range tests {
		if got := cfg.Label(tt.score); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestLoadFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, `
thresholds:
  min_word_count: 50
weights:
  clarity: 2
vague_terms: [stuff, things]
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Thresholds.MinWordCount != 50 {
		t.Errorf("MinWordCount = %d, want 50", cfg.Thresholds.MinWordCount)
	}
	// Sibling keys in a nested mapping survive.
	if cfg.Thresholds.MaxSentenceLength != 40 {
		t.Errorf("MaxSentenceLength = %d, want 40", cfg.Thresholds.MaxSentenceLength)
	}
	if cfg.Weights.Clarity != 2 || cfg.Weights.Structure != 0.8 {
		t.Errorf("Weights = %+v", cfg.Weights)
	}
	// Lists replace wholesale.
	if !slices.Equal(cfg.VagueTerms, []string{"stuff", "things"}) {
		t.Errorf("VagueTerms = %v", cfg.VagueTerms)
	}
	if !slices.Equal(cfg.RoleMarkers, Default().RoleMarkers) {
		t.Errorf("RoleMarkers changed: %v", cfg.RoleMarkers)
	}
}

func TestLoadFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Thresholds.MinWordCount != 20 {
		t.Errorf("MinWordCount = %d, want 20", cfg.Thresholds.MinWordCount)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"not a mapping", "- a\n- b\n"},
		{"invalid yaml", "thresholds: [\n"},
		{"wrong type", "thresholds:\n  min_word_count: lots\n"},
		{"negative weight", "weights:\n  clarity: -1\n"},
		{"zero threshold", "thresholds:\n  max_sentence_length: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			writeRules(t, path, tt.content)

			_, err := LoadFile(path)
			if !evalerrors.Is(err, evalerrors.ErrInvalidConfig) {
				t.Errorf("LoadFile() error = %v, want INVALID_CONFIG", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
		if !evalerrors.Is(err, evalerrors.ErrInvalidConfig) {
			t.Errorf("LoadFile() error = %v, want INVALID_CONFIG", err)
		}
	})
}

func TestMergeFile_DoesNotMutateBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, "weights:\n  structure: 3\n")

	base := Default()
	merged, err := MergeFile(base, path)
	if err != nil {
		t.Fatalf("MergeFile() error = %v", err)
	}
	if merged.Weights.Structure != 3 {
		t.Errorf("merged Structure = %v, want 3", merged.Weights.Structure)
	}
	if base.Weights.Structure != 0.8 {
		t.Errorf("base Structure = %v, want 0.8", base.Weights.Structure)
	}
}

func TestLoadWithRepo_Layering(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()
	subDir := filepath.Join(repoRoot, "a", "b")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}

	writeRules(t, filepath.Join(globalDir, RulesFile), "thresholds:\n  min_word_count: 30\nweights:\n  clarity: 1.5\n")
	writeRules(t, filepath.Join(repoRoot, DirName, RulesFile), "thresholds:\n  min_word_count: 40\n")
	explicit := filepath.Join(t.TempDir(), "ci.yaml")
	writeRules(t, explicit, "score_labels:\n  excellent: 90\n")

	cfg, err := LoadWithRepo(globalDir, subDir, explicit)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}

	if cfg.Thresholds.MinWordCount != 40 {
		t.Errorf("MinWordCount = %d, want 40 (repo beats global)", cfg.Thresholds.MinWordCount)
	}
	if cfg.Weights.Clarity != 1.5 {
		t.Errorf("Clarity = %v, want 1.5 (from global)", cfg.Weights.Clarity)
	}
	if cfg.ScoreLabels.Excellent != 90 || cfg.ScoreLabels.Good != 60 {
		t.Errorf("ScoreLabels = %+v", cfg.ScoreLabels)
	}
}

func TestLoadWithRepo_NothingFound(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir(), "")
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.Weights.Completeness != 1.2 {
		t.Errorf("Completeness = %v, want default 1.2", cfg.Weights.Completeness)
	}
}

func TestLoadWithRepo_MissingExplicit(t *testing.T) {
	_, err := LoadWithRepo("", "", filepath.Join(t.TempDir(), "nope.yaml"))
	if !evalerrors.Is(err, evalerrors.ErrInvalidConfig) {
		t.Errorf("LoadWithRepo() error = %v, want INVALID_CONFIG", err)
	}
}

func TestFindRepoRules(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "x", "y", "z")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := FindRepoRules(deep); got != "" {
		t.Errorf("FindRepoRules() = %q, want empty", got)
	}

	want := filepath.Join(root, "x", DirName, RulesFile)
	writeRules(t, want, "{}\n")
	if got := FindRepoRules(deep); got != want {
		t.Errorf("FindRepoRules() = %q, want %q", got, want)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rules.yaml")

	cfg := Default()
	cfg.Thresholds.MinWordCount = 33
	cfg.FlowMarkers = []string{"first", "lastly"}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Thresholds.MinWordCount != 33 {
		t.Errorf("MinWordCount = %d, want 33", loaded.Thresholds.MinWordCount)
	}
	if !slices.Equal(loaded.FlowMarkers, []string{"first", "lastly"}) {
		t.Errorf("FlowMarkers = %v", loaded.FlowMarkers)
	}
	if !slices.Equal(loaded.GuardrailMarkers, Default().GuardrailMarkers) {
		t.Errorf("GuardrailMarkers = %v", loaded.GuardrailMarkers)
	}
}
