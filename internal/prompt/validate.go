package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MinContentChars is the shortest prompt body that passes validation.
const MinContentChars = 10

// Validate checks parsed prompts. It returns true when there are no errors;
// the slice lists every problem found in document order.
func Validate(prompts []Prompt) (bool, []string) {
	var errs []string

	if len(prompts) == 0 {
		errs = append(errs, "No prompts found. Use YAML frontmatter (---) or '## System Prompt' / '## User Prompt' headings.")
		return false, errs
	}

	for _, p := range prompts {
		if n := CountChars(strings.TrimSpace(p.Content)); n < MinContentChars {
			errs = append(errs, fmt.Sprintf("Prompt '%s' (line %d) is too short (%d chars). Consider adding more detail.", p.Name, p.LineStart, n))
		}

		if p.Type == KindSkill && p.Metadata != nil {
			if p.Metadata.Name == nil || *p.Metadata.Name == "" {
				errs = append(errs, fmt.Sprintf("Skill prompt '%s' is missing 'name' in frontmatter.", p.Name))
			}
			if p.Metadata.Description == nil || *p.Metadata.Description == "" {
				errs = append(errs, fmt.Sprintf("Skill prompt '%s' is missing 'description' in frontmatter.", p.Name))
			}
		}
	}

	return len(errs) == 0, errs
}

// ParseFile reads and parses a markdown file. The document is named after the
// file's base name.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data), filepath.Base(path)), nil
}

// ValidateFile parses and validates a file on disk. Read failures are reported
// as validation errors rather than returned.
func ValidateFile(path string) (bool, []string) {
	doc, err := ParseFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, []string{fmt.Sprintf("File not found: %s", path)}
		}
		return false, []string{fmt.Sprintf("Failed to read file: %v", err)}
	}
	return Validate(doc.Prompts)
}
