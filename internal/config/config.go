package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	evalerrors "github.com/hpungsan/prompteval/internal/errors"
)

const (
	// DirName is the per-user and per-repo configuration directory.
	DirName = ".prompteval"
	// RulesFile is the rule set file name inside DirName.
	RulesFile = "rules.yaml"
)

// Thresholds are numeric limits used by the analyzers.
type Thresholds struct {
	MinWordCount      int `yaml:"min_word_count"`
	MaxSentenceLength int `yaml:"max_sentence_length"`
}

// Weights are the per-dimension weights used when aggregating scores.
// Guardrails has two weights: one for system/skill prompts and one for user prompts.
type Weights struct {
	Clarity          float64 `yaml:"clarity"`
	Specificity      float64 `yaml:"specificity"`
	Structure        float64 `yaml:"structure"`
	Completeness     float64 `yaml:"completeness"`
	OutputFormat     float64 `yaml:"output_format"`
	GuardrailsSystem float64 `yaml:"guardrails_system"`
	GuardrailsUser   float64 `yaml:"guardrails_user"`
}

// ScoreLabels are the lower bounds for each quality label.
type ScoreLabels struct {
	Excellent int `yaml:"excellent"`
	Good      int `yaml:"good"`
	Fair      int `yaml:"fair"`
}

// Config is the analysis rule set. It is treated as read-only once loaded;
// analyzers may share one Config across goroutines.
type Config struct {
	Thresholds  Thresholds  `yaml:"thresholds"`
	Weights     Weights     `yaml:"weights"`
	ScoreLabels ScoreLabels `yaml:"score_labels"`

	VagueTerms          []string `yaml:"vague_terms"`
	OutputFormatMarkers []string `yaml:"output_format_markers"`
	GuardrailMarkers    []string `yaml:"guardrail_markers"`
	ExampleMarkers      []string `yaml:"example_markers"`
	RoleMarkers         []string `yaml:"role_markers"`
	ContextMarkers      []string `yaml:"context_markers"`
	TaskMarkers         []string `yaml:"task_markers"`
	FlowMarkers         []string `yaml:"flow_markers"`
	ScopeMarkers        []string `yaml:"scope_markers"`
	EdgeCaseMarkers     []string `yaml:"edge_case_markers"`
	LengthMarkers       []string `yaml:"length_markers"`
	SpecificFormats     []string `yaml:"specific_formats"`
}

// Default returns the built-in rule set.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			MinWordCount:      20,
			MaxSentenceLength: 40,
		},
		Weights: Weights{
			Clarity:          1.0,
			Specificity:      1.0,
			Structure:        0.8,
			Completeness:     1.2,
			OutputFormat:     0.8,
			GuardrailsSystem: 1.2,
			GuardrailsUser:   0.6,
		},
		ScoreLabels: ScoreLabels{
			Excellent: 80,
			Good:      60,
			Fair:      40,
		},
		VagueTerms: []string{
			"good", "proper", "appropriate", "nice", "better", "best",
			"correct", "right", "wrong", "bad", "okay", "fine",
			"reasonable", "suitable", "adequate", "sufficient",
			"effective", "efficient", "optimal", "ideal",
		},
		OutputFormatMarkers: []string{
			"format", "respond", "output", "return", "provide", "give",
			"answer", "reply", "json", "markdown", "bullet", "list", "table",
		},
		GuardrailMarkers: []string{
			"never", "always", "must", "don't", "do not", "avoid", "refuse",
			"only", "cannot", "should not", "forbidden", "prohibited",
			"limit", "restrict", "boundary", "exception", "unless", "if not",
		},
		ExampleMarkers: []string{"example", "for instance", "such as", "e.g.", "like this"},
		RoleMarkers:    []string{"you are", "act as", "behave as", "role", "persona", "assistant", "expert"},
		ContextMarkers: []string{"context", "background", "given", "assuming", "based on", "considering"},
		TaskMarkers: []string{
			"task", "goal", "objective", "help", "assist",
			"create", "generate", "analyze", "review", "write",
		},
		FlowMarkers:     []string{"first", "then", "next", "finally", "after", "before", "step"},
		ScopeMarkers:    []string{"only", "limited to", "focus on", "specifically", "exclusively"},
		EdgeCaseMarkers: []string{"if", "when", "unless", "except", "in case", "otherwise"},
		LengthMarkers: []string{
			"brief", "concise", "detailed", "comprehensive", "short", "long",
			"words", "sentences", "paragraphs",
		},
		SpecificFormats: []string{"json", "xml", "yaml", "markdown", "html", "csv", "table"},
	}
}

// Label maps an overall score to excellent, good, fair or poor.
func (c *Config) Label(score int) string {
	switch {
	case score >= c.ScoreLabels.Excellent:
		return "excellent"
	case score >= c.ScoreLabels.Good:
		return "good"
	case score >= c.ScoreLabels.Fair:
		return "fair"
	default:
		return "poor"
	}
}

// Validate checks that thresholds are positive and weights non-negative.
func (c *Config) Validate() error {
	if c.Thresholds.MinWordCount <= 0 {
		return fmt.Errorf("thresholds.min_word_count must be positive, got %d", c.Thresholds.MinWordCount)
	}
	if c.Thresholds.MaxSentenceLength <= 0 {
		return fmt.Errorf("thresholds.max_sentence_length must be positive, got %d", c.Thresholds.MaxSentenceLength)
	}

	weights := map[string]float64{
		"clarity":           c.Weights.Clarity,
		"specificity":       c.Weights.Specificity,
		"structure":         c.Weights.Structure,
		"completeness":      c.Weights.Completeness,
		"output_format":     c.Weights.OutputFormat,
		"guardrails_system": c.Weights.GuardrailsSystem,
		"guardrails_user":   c.Weights.GuardrailsUser,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("weights.%s must not be negative, got %g", name, w)
		}
	}
	return nil
}

// LoadFile loads a rules file on top of the built-in defaults.
func LoadFile(path string) (*Config, error) {
	return MergeFile(Default(), path)
}

// MergeFile applies the rules file at path on top of base and returns a new Config.
// Nested mappings merge key by key; lists and scalars in the file replace the
// base value wholesale. base is not modified.
func MergeFile(base *Config, path string) (*Config, error) {
	overlay, err := readOverlay(path)
	if err != nil {
		return nil, err
	}

	merged, err := toMap(base)
	if err != nil {
		return nil, evalerrors.NewInternal(err)
	}
	deepMerge(merged, overlay)

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, evalerrors.NewInvalidConfig(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, evalerrors.NewInvalidConfig(path, err)
	}
	return cfg, nil
}

// LoadWithRepo builds the effective rule set: defaults, then the global rules in
// globalDir, then the nearest repo rules found walking up from startDir, then
// the explicit file. Missing global and repo files are skipped; a missing
// explicit file is an error. Empty arguments skip that layer.
func LoadWithRepo(globalDir, startDir, explicit string) (*Config, error) {
	cfg := Default()

	var layers []string
	if globalDir != "" {
		global := filepath.Join(globalDir, RulesFile)
		if _, err := os.Stat(global); err == nil {
			layers = append(layers, global)
		}
	}
	if startDir != "" {
		if repo := FindRepoRules(startDir); repo != "" {
			layers = append(layers, repo)
		}
	}
	if explicit != "" {
		layers = append(layers, explicit)
	}

	for _, path := range layers {
		next, err := MergeFile(cfg, path)
		if err != nil {
			return nil, err
		}
		cfg = next
	}
	return cfg, nil
}

// FindRepoRules walks upward from startDir to find the nearest .prompteval/rules.yaml.
// Returns the path if found, or empty string if not found.
func FindRepoRules(startDir string) string {
	dir := startDir
	for {
		path := filepath.Join(dir, DirName, RulesFile)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// GlobalDir returns ~/.prompteval.
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// Save writes cfg as YAML, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg as YAML with two-space indentation.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// readOverlay reads a rules file as a generic mapping. An empty file is an
// empty mapping; anything other than a mapping is rejected.
func readOverlay(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, evalerrors.NewInvalidConfig(path, fmt.Errorf("file not found"))
		}
		return nil, evalerrors.NewInvalidConfig(path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, evalerrors.NewInvalidConfig(path, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return map[string]any{}, nil
	}
	body := root.Content[0]
	if body.Kind == yaml.ScalarNode && body.Tag == "!!null" {
		return map[string]any{}, nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, evalerrors.NewInvalidConfig(path, fmt.Errorf("top level must be a mapping"))
	}

	overlay := map[string]any{}
	if err := body.Decode(&overlay); err != nil {
		return nil, evalerrors.NewInvalidConfig(path, err)
	}
	return overlay, nil
}

// deepMerge merges src into dst in place.
func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			deepMerge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]any) (*Config, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
