package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hpungsan/prompteval/internal/db"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/prompt"
)

// InlineInput contains parameters for the CreateInline operation.
type InlineInput struct {
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
	Type    string `json:"type,omitempty"`
}

// CreateInline replaces the current set with a single prompt built from raw text.
func CreateInline(ctx context.Context, database *sql.DB, input InlineInput) (*prompt.Prompt, error) {
	p, err := inlinePrompt(input, DefaultInlineName)
	if err != nil {
		return nil, err
	}
	doc := &prompt.Document{Filename: DefaultInlineFilename, Prompts: []prompt.Prompt{p}}

	if _, err := loadDocument(ctx, database, doc); err != nil {
		return nil, err
	}
	return &p, nil
}

// inlinePrompt builds a prompt from raw text. Type defaults to user.
func inlinePrompt(input InlineInput, defaultName string) (prompt.Prompt, error) {
	if err := requireContent(input.Content); err != nil {
		return prompt.Prompt{}, err
	}

	kindName := input.Type
	if kindName == "" {
		kindName = string(prompt.KindUser)
	}
	kind, ok := prompt.ParseKind(kindName)
	if !ok {
		return prompt.Prompt{}, errors.NewInvalidRequest(fmt.Sprintf("Invalid type '%s'. Use 'system', 'user', or 'skill'.", input.Type))
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = defaultName
	}

	return prompt.Prompt{
		ID:        prompt.NewID(),
		Name:      name,
		Type:      kind,
		Content:   strings.TrimSpace(input.Content),
		LineStart: 1,
		LineEnd:   strings.Count(input.Content, "\n") + 1,
	}, nil
}

// List returns the current prompt set. An empty session yields an empty list.
func List(ctx context.Context, database *sql.DB) (*PromptsOutput, error) {
	filename, err := db.CurrentFilename(ctx, database)
	if err != nil {
		return nil, err
	}
	prompts, err := db.ListPrompts(ctx, database)
	if err != nil {
		return nil, err
	}
	return &PromptsOutput{Filename: filename, Prompts: prompts}, nil
}

// Get retrieves a prompt by ID.
func Get(ctx context.Context, database *sql.DB, id string) (*prompt.Prompt, error) {
	if id == "" {
		return nil, errors.NewInvalidRequest("prompt id is required")
	}
	return db.GetPrompt(ctx, database, id)
}

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Update replaces a prompt's content. Name, type, line range and metadata
// are kept; any cached heuristic result is dropped.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*prompt.Prompt, error) {
	if input.ID == "" {
		return nil, errors.NewInvalidRequest("prompt id is required")
	}
	if err := requireContent(input.Content); err != nil {
		return nil, err
	}

	current, err := db.GetPrompt(ctx, database, input.ID)
	if err != nil {
		return nil, err
	}
	updated := current.WithContent(strings.TrimSpace(input.Content))
	if err := db.UpdatePromptContent(ctx, database, updated.ID, updated.Content); err != nil {
		return nil, err
	}
	return &updated, nil
}
