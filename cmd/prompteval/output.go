package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/llm"
)

// Helper functions

// loadConfig builds the rule set: defaults, ~/.prompteval/rules.yaml, the
// nearest repo rules above the working directory, then explicit.
func loadConfig(explicit string) (*config.Config, error) {
	globalDir, err := config.GlobalDir()
	if err != nil {
		globalDir = ""
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	return config.LoadWithRepo(globalDir, cwd, explicit)
}

// requireFileArg returns the first positional argument.
func requireFileArg(c *cli.Context) (string, error) {
	if c.NArg() == 0 {
		return "", errors.NewInvalidRequest("a markdown file argument is required")
	}
	return c.Args().First(), nil
}

// readFile reads a markdown file as text.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.NewNotFound("file", path)
		}
		return "", errors.NewInternal(err)
	}
	if !utf8.Valid(data) {
		return "", errors.NewInvalidRequest("File must be UTF-8 encoded")
	}
	return string(data), nil
}

// writeJSON writes v to path as indented JSON.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// writeNew writes data to path, creating parent directories. An existing file
// is only replaced when force is set.
func writeNew(path string, data []byte, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewInvalidRequest(fmt.Sprintf("%s already exists. Use --force to overwrite.", path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewInternal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// outputError formats error for CLI.
func outputError(err error) error {
	if evalErr, ok := err.(*errors.EvalError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", evalErr.Code, evalErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// splitList splits a comma-separated string, dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// truncateRunes shortens s to n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func printDimensions(w io.Writer, indent string, r *heuristics.Result) {
	for _, name := range heuristics.Dimensions {
		title := heuristics.DimensionTitle(name) + ":"
		fmt.Fprintf(w, "%s%-14s %d/100\n", indent, title, r.Dimension(name).Score)
	}
}

// printIssues lists issues across dimensions in dimension order. limit <= 0
// prints all of them.
func printIssues(w io.Writer, indent, heading string, r *heuristics.Result, limit int) {
	var lines []string
	for _, name := range heuristics.Dimensions {
		for _, issue := range r.Dimension(name).Issues {
			line := issue.Message
			if issue.Line != nil {
				line += fmt.Sprintf(" (line %d)", *issue.Line)
			}
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}

	fmt.Fprintf(w, "%s%s\n", indent, heading)
	for _, l := range lines {
		fmt.Fprintf(w, "%s  - %s\n", indent, l)
	}
}

func printSuggestions(w io.Writer, heading string, r *heuristics.Result) {
	var all []string
	for _, name := range heuristics.Dimensions {
		all = append(all, r.Dimension(name).Suggestions...)
	}
	if len(all) == 0 {
		return
	}
	fmt.Fprintln(w, heading)
	for _, s := range all {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}

// printAnalysis prints the non-empty finding categories of an LLM review.
// limit <= 0 prints every item.
func printAnalysis(w io.Writer, indent string, a *llm.Analysis, limit int) {
	sections := []struct {
		title string
		items []string
	}{
		{"Ambiguities:", a.Ambiguities},
		{"Missing Context:", a.MissingContext},
		{"Injection Risks:", a.InjectionRisks},
		{"Best Practice Issues:", a.BestPracticeIssues},
	}
	for _, s := range sections {
		if len(s.items) == 0 {
			continue
		}
		items := s.items
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		fmt.Fprintf(w, "%s%s\n", indent, s.title)
		for _, item := range items {
			fmt.Fprintf(w, "%s  - %s\n", indent, item)
		}
	}
}

func printSuggestion(w io.Writer, s *llm.Suggestion) {
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	fmt.Fprintf(w, "\n%s\nSUGGESTED IMPROVEMENTS\n%s\n\n", rule, rule)
	fmt.Fprintf(w, "%s\n\n", s.Explanation)

	if len(s.Changes) > 0 {
		fmt.Fprintln(w, "Changes made:")
		for _, ch := range s.Changes {
			fmt.Fprintf(w, "\n  Original: %s...\n", truncateRunes(ch.Original, 60))
			fmt.Fprintf(w, "  Replacement: %s...\n", truncateRunes(ch.Replacement, 60))
			fmt.Fprintf(w, "  Reason: %s\n", ch.Reason)
		}
	}

	suggested := s.Suggested
	if suggested == "" {
		suggested = s.Original
	}
	fmt.Fprintf(w, "\n%s\nIMPROVED PROMPT\n%s\n\n%s\n", thin, thin, suggested)
}
