// Package ops implements the prompteval operations shared by the HTTP API,
// the CLI and the MCP server. Each operation takes a context and the session
// database and returns either an output struct or an *errors.EvalError.
package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/prompteval/internal/db"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/prompt"
)

const (
	// MaxUploadBytes limits uploaded and pasted documents.
	MaxUploadBytes = 1 << 20

	DefaultInlineName     = "Inline Prompt"
	DefaultInlineFilename = "inline.md"
)

// PromptsOutput is the current prompt set.
type PromptsOutput struct {
	Filename string          `json:"filename"`
	Prompts  []prompt.Prompt `json:"prompts"`
}

// loadDocument stores doc as the current session document.
func loadDocument(ctx context.Context, database *sql.DB, doc *prompt.Document) (*PromptsOutput, error) {
	if len(doc.Prompts) == 0 {
		return nil, errors.NewNoPrompts(doc.Filename)
	}
	if err := db.ReplaceDocument(ctx, database, doc); err != nil {
		return nil, err
	}
	return &PromptsOutput{Filename: doc.Filename, Prompts: doc.Prompts}, nil
}

// requireContent rejects empty or whitespace-only text.
func requireContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.NewInvalidRequest("Content is required")
	}
	return nil
}
