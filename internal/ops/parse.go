package ops

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// ParseInput contains parameters for the ParseText operation.
type ParseInput struct {
	Content  string `json:"content"`
	Filename string `json:"filename,omitempty"`
}

// ParseText parses markdown and makes its prompts the current set.
func ParseText(ctx context.Context, database *sql.DB, input ParseInput) (*PromptsOutput, error) {
	doc, err := ParseDocument(input)
	if err != nil {
		return nil, err
	}
	return loadDocument(ctx, database, doc)
}

// ParseDocument checks the input limits and parses it without storing anything.
func ParseDocument(input ParseInput) (*prompt.Document, error) {
	if err := requireContent(input.Content); err != nil {
		return nil, err
	}
	if len(input.Content) > MaxUploadBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("Content exceeds %d bytes", MaxUploadBytes))
	}
	return prompt.Parse(input.Content, input.Filename), nil
}

// ParseUpload validates an uploaded markdown file and parses it.
func ParseUpload(ctx context.Context, database *sql.DB, filename string, data []byte) (*PromptsOutput, error) {
	if filename == "" {
		return nil, errors.NewInvalidRequest("No file provided")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".md") {
		return nil, errors.NewInvalidRequest("File must be a markdown (.md) file")
	}
	if len(data) > MaxUploadBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("File exceeds %d bytes", MaxUploadBytes))
	}
	if !utf8.Valid(data) {
		return nil, errors.NewInvalidRequest("File must be UTF-8 encoded")
	}

	return ParseText(ctx, database, ParseInput{Content: string(data), Filename: filepath.Base(filename)})
}
