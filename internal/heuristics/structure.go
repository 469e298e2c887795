package heuristics

import (
	"regexp"
	"strings"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/prompt"
)

var numberedPattern = regexp.MustCompile(`^\s*\d+\.`)

const (
	longPromptWords   = 100
	flowWords         = 50
	denseBlockWords   = 80
	denseBlockMaxLine = 3
)

// Structure scores organization: lists, numbering, headings, flow markers and
// paragraph breaks.
func Structure(p *prompt.Prompt, cfg *config.Config) DimensionScore {
	ds := newScore()
	content := p.Content
	lines := strings.Split(content, "\n")
	words := len(strings.Fields(content))

	var hasLists, hasNumbered, hasSections bool
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "•") {
			hasLists = true
		}
		if numberedPattern.MatchString(line) {
			hasNumbered = true
		}
		if strings.HasPrefix(trimmed, "#") {
			hasSections = true
		}
	}

	if words > longPromptWords && !hasLists && !hasNumbered && !hasSections {
		ds.Issues = append(ds.Issues, Issue{
			Message: "Long prompt lacks organizational structure",
			Line:    intPtr(p.LineStart),
			LineEnd: intPtr(p.LineEnd),
		})
		ds.suggest("Break content into sections or bullet points")
	}

	hasFlow := hasAnyMarker(strings.ToLower(content), cfg.FlowMarkers)
	if words > flowWords && !hasFlow && !hasNumbered {
		ds.add("No clear sequence or flow indicators", nil, nil)
		ds.suggest("Add sequence markers (first, then, finally) for multi-step instructions")
	}

	if words > denseBlockWords && len(lines) < denseBlockMaxLine {
		ds.Issues = append(ds.Issues, Issue{
			Message: "Dense text block without paragraph breaks",
			Line:    intPtr(p.LineStart),
			LineEnd: intPtr(p.LineStart + len(lines) - 1),
			Snippet: strPtr(truncate(lines[0], 50)),
		})
		ds.suggest("Add paragraph breaks to improve readability")
	}

	base := 100
	if words > longPromptWords {
		switch {
		case hasLists || hasNumbered:
			base = 95
		case hasSections:
			base = 90
		default:
			base = 60
		}
	}

	ds.Score = max(0, base-10*len(ds.Issues))
	return ds
}
