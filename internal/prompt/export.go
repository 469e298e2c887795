package prompt

import (
	"fmt"
	"strings"
)

// Annotator returns extra markdown to place after a prompt's body, or "" for none.
type Annotator func(p Prompt) string

// ToMarkdown renders prompts back into the heading format Parse understands.
// Skill prompts are written as system prompts; frontmatter is not reproduced.
// Prompts carrying their default name get a bare heading.
func ToMarkdown(prompts []Prompt, annotate Annotator) string {
	parts := []string{"# Exported Prompts\n"}

	for _, p := range prompts {
		label := "User"
		kind := KindUser
		if p.Type.SystemLike() {
			label = "System"
			kind = KindSystem
		}

		name := strings.Join(strings.Fields(p.Name), " ")
		if name == "" || name == defaultName(kind) {
			parts = append(parts, fmt.Sprintf("## %s Prompt\n", label))
		} else {
			parts = append(parts, fmt.Sprintf("## %s Prompt: %s\n", label, name))
		}

		parts = append(parts, p.Content)
		if annotate != nil {
			if note := annotate(p); note != "" {
				parts = append(parts, "", note)
			}
		}
		parts = append(parts, "\n")
	}

	return strings.Join(parts, "\n")
}
