package prompt

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the origin/role of a prompt.
type Kind string

const (
	KindSystem Kind = "system"
	KindUser   Kind = "user"
	KindSkill  Kind = "skill" // YAML frontmatter documents (agent skills)
)

// ParseKind maps a case-insensitive type string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSystem:
		return KindSystem, true
	case KindUser:
		return KindUser, true
	case KindSkill:
		return KindSkill, true
	}
	return "", false
}

// SystemLike reports whether prompts of this kind are held to system-prompt rules
// (role, guardrails, scope, edge cases).
func (k Kind) SystemLike() bool {
	return k == KindSystem || k == KindSkill
}

// Badge is the short label used in CLI listings.
func (k Kind) Badge() string {
	switch k {
	case KindSystem:
		return "[SYS]"
	case KindSkill:
		return "[SKL]"
	default:
		return "[USR]"
	}
}

// Metadata holds YAML frontmatter fields. Only skill prompts carry it.
type Metadata struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	License     *string  `json:"license,omitempty"`
	Version     *string  `json:"version,omitempty"`
	Author      *string  `json:"author,omitempty"`
	Tags        []string `json:"tags"`

	// Extra holds every non-standard frontmatter key, stringified, in document order.
	Extra *orderedmap.OrderedMap[string, string] `json:"extra"`
}

// Prompt is a single extracted prompt. Values are never mutated after parsing;
// an update builds a new Prompt with the same ID.
type Prompt struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      Kind      `json:"type"`
	Content   string    `json:"content"`
	LineStart int       `json:"line_start"`
	LineEnd   int       `json:"line_end"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// WithContent returns a copy of p with new content. ID, name, type, line range
// and metadata are kept.
func (p Prompt) WithContent(content string) Prompt {
	p.Content = content
	return p
}

// Document is a parsed markdown file. Prompts are in document order.
type Document struct {
	Filename string   `json:"filename"`
	Prompts  []Prompt `json:"prompts"`
}

// Find returns the first prompt whose name matches case-insensitively.
func (d *Document) Find(name string) *Prompt {
	for i := range d.Prompts {
		if strings.EqualFold(d.Prompts[i].Name, name) {
			return &d.Prompts[i]
		}
	}
	return nil
}

// Names lists prompt names in document order.
func (d *Document) Names() []string {
	names := make([]string, len(d.Prompts))
	for i, p := range d.Prompts {
		names[i] = p.Name
	}
	return names
}
