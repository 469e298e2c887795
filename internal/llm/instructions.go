package llm

import (
	"fmt"
	"strings"

	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/prompt"
)

const analysisSystemPrompt = `You are an expert prompt engineer analyzing prompts for effectiveness.
Your task is to provide detailed, actionable analysis of prompts.

Analyze the prompt for:
1. Ambiguities - phrases or instructions that could be misinterpreted
2. Missing context - information gaps that could affect output quality
3. Prompt injection risks - potential security vulnerabilities (for system prompts)
4. Best practice issues - deviations from prompt engineering best practices

Respond in JSON format:
{
  "ambiguities": ["list of ambiguous phrases or instructions"],
  "missing_context": ["list of missing information or context"],
  "injection_risks": ["list of potential injection vulnerabilities"],
  "best_practice_issues": ["list of best practice violations"],
  "suggested_revision": "improved version of the prompt",
  "revision_explanation": "explanation of why changes were made"
}`

const suggestionSystemPrompt = `You are an expert prompt engineer helping to improve prompts.
Your task is to suggest specific improvements to make the prompt more effective.

Consider:
- Clarity and readability
- Specificity and concreteness
- Structure and organization
- Completeness of context
- Output format specification
- Safety guardrails (for system prompts)

Respond in JSON format:
{
  "suggested": "the improved prompt text",
  "explanation": "overall explanation of improvements",
  "changes": [
    {
      "original": "original text snippet",
      "replacement": "improved text",
      "reason": "why this change was made"
    }
  ]
}`

const (
	// weakDimension is the score below which a dimension's issues are sent as context.
	weakDimension = 70
	// maxContextIssues caps how many heuristic issues are sent.
	maxContextIssues = 10
)

func promptKindLabel(p *prompt.Prompt) string {
	if p.Type.SystemLike() {
		return "system prompt"
	}
	return "user prompt"
}

func analysisMessage(p *prompt.Prompt) string {
	return fmt.Sprintf("Analyze this %s:\n\n---\n%s\n---\n\nProvide your analysis in the specified JSON format.",
		promptKindLabel(p), p.Content)
}

func suggestionMessage(p *prompt.Prompt, h *heuristics.Result, focus []string) string {
	focusLine := ""
	if len(focus) > 0 {
		focusLine = "\nFocus especially on improving: " + strings.Join(focus, ", ")
	}

	return fmt.Sprintf("Improve this %s:\n\n---\n%s\n---\n\n%s\n%s\n\nProvide specific improvements in the specified JSON format.",
		promptKindLabel(p), p.Content, HeuristicContext(h), focusLine)
}

// HeuristicContext summarizes a heuristic result for the model: every
// dimension score, then up to ten issues from dimensions scoring below 70.
// A nil result yields "".
func HeuristicContext(h *heuristics.Result) string {
	if h == nil {
		return ""
	}

	lines := []string{"Heuristic analysis scores:"}
	for _, name := range heuristics.Dimensions {
		lines = append(lines, fmt.Sprintf("- %s: %d/100", heuristics.DimensionTitle(name), h.Dimension(name).Score))
	}

	var issues []string
	for _, name := range heuristics.Dimensions {
		ds := h.Dimension(name)
		if ds.Score >= weakDimension {
			continue
		}
		for _, is := range ds.Issues {
			issues = append(issues, fmt.Sprintf("[%s] %s", name, is.Message))
		}
	}
	if len(issues) > 0 {
		lines = append(lines, "\nIdentified issues:")
		for _, is := range issues[:min(maxContextIssues, len(issues))] {
			lines = append(lines, "- "+is)
		}
	}

	return strings.Join(lines, "\n")
}
