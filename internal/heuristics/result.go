package heuristics

// Dimension names, in report order.
const (
	DimClarity      = "clarity"
	DimSpecificity  = "specificity"
	DimStructure    = "structure"
	DimCompleteness = "completeness"
	DimOutputFormat = "output_format"
	DimGuardrails   = "guardrails"
)

// Dimensions lists every dimension in report order.
var Dimensions = []string{
	DimClarity, DimSpecificity, DimStructure,
	DimCompleteness, DimOutputFormat, DimGuardrails,
}

var dimensionTitles = map[string]string{
	DimClarity:      "Clarity",
	DimSpecificity:  "Specificity",
	DimStructure:    "Structure",
	DimCompleteness: "Completeness",
	DimOutputFormat: "Output Format",
	DimGuardrails:   "Guardrails",
}

// DimensionTitle returns the display name of a dimension ("Output Format").
func DimensionTitle(name string) string {
	if t, ok := dimensionTitles[name]; ok {
		return t
	}
	return name
}

// Issue is a single finding. A nil Line means the issue applies to the whole prompt.
type Issue struct {
	Message string  `json:"message"`
	Line    *int    `json:"line"`
	LineEnd *int    `json:"line_end,omitempty"`
	Snippet *string `json:"snippet"`
}

// DimensionScore is one dimension's result. Score is in [0, 100].
type DimensionScore struct {
	Score       int      `json:"score"`
	Issues      []Issue  `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Result is the full heuristic analysis of one prompt.
type Result struct {
	PromptID     string         `json:"prompt_id"`
	OverallScore int            `json:"overall_score"`
	Clarity      DimensionScore `json:"clarity"`
	Specificity  DimensionScore `json:"specificity"`
	Structure    DimensionScore `json:"structure"`
	Completeness DimensionScore `json:"completeness"`
	OutputFormat DimensionScore `json:"output_format"`
	Guardrails   DimensionScore `json:"guardrails"`
}

// Dimension returns the named dimension, or nil for unknown names.
func (r *Result) Dimension(name string) *DimensionScore {
	switch name {
	case DimClarity:
		return &r.Clarity
	case DimSpecificity:
		return &r.Specificity
	case DimStructure:
		return &r.Structure
	case DimCompleteness:
		return &r.Completeness
	case DimOutputFormat:
		return &r.OutputFormat
	case DimGuardrails:
		return &r.Guardrails
	}
	return nil
}

// IssueCount is the total number of issues across all dimensions.
func (r *Result) IssueCount() int {
	n := 0
	for _, name := range Dimensions {
		n += len(r.Dimension(name).Issues)
	}
	return n
}

// newScore starts a dimension with empty (non-nil) issue and suggestion lists.
func newScore() DimensionScore {
	return DimensionScore{Issues: []Issue{}, Suggestions: []string{}}
}

func (d *DimensionScore) add(msg string, line *int, snippet *string) {
	d.Issues = append(d.Issues, Issue{Message: msg, Line: line, Snippet: snippet})
}

func (d *DimensionScore) suggest(s string) {
	d.Suggestions = append(d.Suggestions, s)
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }
