package prompt

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is used when a document is parsed without a name.
const DefaultFilename = "untitled.md"

// headingPattern matches prompt headings on a trimmed line:
// "## System Prompt", "## User Prompt: Name" (case-insensitive).
var headingPattern = regexp.MustCompile(`(?i)^##\s+(system|user)\s+prompt(?::\s*(.+))?$`)

// knownMetaKeys are frontmatter keys mapped onto Metadata fields.
var knownMetaKeys = map[string]bool{
	"name": true, "description": true, "license": true,
	"version": true, "author": true, "tags": true,
}

// Parse extracts prompts from a markdown document.
//
// Documents that open with a YAML frontmatter mapping produce a single skill
// prompt. Everything else is scanned for "## System Prompt" / "## User Prompt"
// headings. Parse never fails: unusable input yields a Document with no prompts.
func Parse(text, filename string) *Document {
	if filename == "" {
		filename = DefaultFilename
	}
	doc := &Document{Filename: filename, Prompts: []Prompt{}}
	lines := splitLines(text)

	if meta, closeIdx, ok := parseFrontmatter(lines); ok {
		if p, ok := frontmatterPrompt(lines, closeIdx, meta, filename); ok {
			doc.Prompts = append(doc.Prompts, p)
		}
		return doc
	}

	doc.Prompts = parseHeadings(lines)
	return doc
}

// splitLines normalizes line endings and splits text into lines.
// A trailing newline terminates the last line rather than starting a new one.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t") == "---"
}

// parseFrontmatter returns the frontmatter mapping node and the index of the
// closing delimiter line. ok is false when the document has no delimiter pair
// or the block is not a YAML mapping.
func parseFrontmatter(lines []string) (meta *yaml.Node, closeIdx int, ok bool) {
	if len(lines) < 2 || !isDelimiter(lines[0]) {
		return nil, 0, false
	}

	for i := 1; i < len(lines); i++ {
		if !isDelimiter(lines[i]) {
			continue
		}
		block := strings.Join(lines[1:i], "\n")

		var root yaml.Node
		if err := yaml.Unmarshal([]byte(block), &root); err != nil {
			return nil, 0, false
		}
		if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
			return nil, 0, false
		}
		return root.Content[0], i, true
	}
	return nil, 0, false
}

// frontmatterPrompt builds the skill prompt that follows a frontmatter block.
func frontmatterPrompt(lines []string, closeIdx int, mapping *yaml.Node, filename string) (Prompt, bool) {
	content := strings.TrimSpace(strings.Join(lines[closeIdx+1:], "\n"))
	if content == "" {
		return Prompt{}, false
	}

	meta := buildMetadata(mapping)

	name := ""
	if meta.Name != nil {
		name = strings.TrimSpace(*meta.Name)
	}
	if name == "" {
		base := filepath.Base(filename)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	lineStart := closeIdx + 2 // closing delimiter is line closeIdx+1
	return Prompt{
		ID:        newID(),
		Name:      name,
		Type:      KindSkill,
		Content:   content,
		LineStart: lineStart,
		LineEnd:   lineStart + strings.Count(content, "\n"),
		Metadata:  meta,
	}, true
}

// buildMetadata maps frontmatter keys onto Metadata, keeping unknown keys in order.
func buildMetadata(mapping *yaml.Node) *Metadata {
	meta := &Metadata{
		Tags:  []string{},
		Extra: orderedmap.New[string, string](),
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		value := resolveAlias(mapping.Content[i+1])

		if !knownMetaKeys[key] {
			if s, ok := stringify(value); ok {
				meta.Extra.Set(key, s)
			}
			continue
		}

		if key == "tags" {
			meta.Tags = normalizeTags(value)
			continue
		}

		s, ok := scalarValue(value)
		if !ok {
			continue
		}
		switch key {
		case "name":
			meta.Name = &s
		case "description":
			meta.Description = &s
		case "license":
			meta.License = &s
		case "version":
			meta.Version = &s
		case "author":
			meta.Author = &s
		}
	}

	return meta
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// scalarValue returns the literal text of a non-null scalar.
func scalarValue(n *yaml.Node) (string, bool) {
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return "", false
	}
	return n.Value, true
}

// stringify renders any YAML value as a string: scalars by their literal text,
// collections as compact JSON (falling back to flow YAML).
func stringify(n *yaml.Node) (string, bool) {
	if s, ok := scalarValue(n); ok {
		return s, true
	}
	if n == nil || n.Kind == yaml.ScalarNode {
		return "", false
	}

	var v any
	if err := n.Decode(&v); err == nil {
		if b, err := json.Marshal(v); err == nil {
			return string(b), true
		}
	}

	flow := *n
	flow.Style = yaml.FlowStyle
	b, err := yaml.Marshal(&flow)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

// normalizeTags accepts "a, b" or a YAML sequence and returns a clean list.
func normalizeTags(n *yaml.Node) []string {
	tags := []string{}
	switch {
	case n == nil:
	case n.Kind == yaml.ScalarNode:
		if s, ok := scalarValue(n); ok {
			for _, part := range strings.Split(s, ",") {
				if t := strings.TrimSpace(part); t != "" {
					tags = append(tags, t)
				}
			}
		}
	case n.Kind == yaml.SequenceNode:
		for _, item := range n.Content {
			if s, ok := scalarValue(resolveAlias(item)); ok {
				if t := strings.TrimSpace(s); t != "" {
					tags = append(tags, t)
				}
			}
		}
	}
	return tags
}

// openPrompt is the heading scanner's "prompt open" state.
type openPrompt struct {
	kind  Kind
	name  string
	start int
	body  []string
}

// parseHeadings runs the heading state machine over the document lines.
// Any "#" line that is not "###" or deeper closes the open prompt, so a stray
// "# Notes" heading also ends the block above it.
func parseHeadings(lines []string) []Prompt {
	prompts := []Prompt{}
	var current *openPrompt

	closeCurrent := func(lineEnd int) {
		if current == nil {
			return
		}
		content := strings.TrimSpace(strings.Join(current.body, "\n"))
		if content != "" {
			prompts = append(prompts, Prompt{
				ID:        newID(),
				Name:      current.name,
				Type:      current.kind,
				Content:   content,
				LineStart: current.start,
				LineEnd:   lineEnd,
			})
		}
		current = nil
	}

	for idx, line := range lines {
		lineNum := idx + 1
		trimmed := strings.TrimSpace(line)

		if m := headingPattern.FindStringSubmatch(trimmed); m != nil {
			closeCurrent(lineNum - 1)

			kind := KindUser
			if strings.EqualFold(m[1], "system") {
				kind = KindSystem
			}
			name := strings.TrimSpace(m[2])
			if name == "" {
				name = defaultName(kind)
			}
			current = &openPrompt{kind: kind, name: name, start: lineNum}
			continue
		}

		if current == nil {
			continue
		}

		if strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "###") {
			closeCurrent(lineNum - 1)
			continue
		}

		current.body = append(current.body, line)
	}

	closeCurrent(len(lines))
	return prompts
}

// defaultName is the name given to headings without a ": Name" suffix.
func defaultName(kind Kind) string {
	if kind == KindSystem {
		return "System Prompt"
	}
	return "User Prompt"
}

// NewID returns a new ULID string for prompts and jobs.
func NewID() string {
	return newID()
}

func newID() string {
	return ulid.Make().String()
}
