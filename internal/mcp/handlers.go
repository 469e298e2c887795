package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{cfg: cfg}
}

// DocumentRequest represents the arguments for parse, validate and analyze.
type DocumentRequest struct {
	Content  string `json:"content"`
	Filename string `json:"filename,omitempty"`
}

// CheckRequest represents the arguments for check.
type CheckRequest struct {
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
}

// HandleParse handles the prompt_parse tool call.
func (h *Handlers) HandleParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	doc, err := ops.ParseDocument(ops.ParseInput{Content: input.Content, Filename: input.Filename})
	if err != nil {
		return errorResult(err), nil
	}
	if len(doc.Prompts) == 0 {
		return errorResult(errors.NewNoPrompts(doc.Filename)), nil
	}

	return successResult(ops.PromptsOutput{Filename: doc.Filename, Prompts: doc.Prompts})
}

// HandleValidate handles the prompt_validate tool call. An invalid document
// is a successful call with valid=false.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	if _, err := ops.ParseDocument(ops.ParseInput{Content: input.Content, Filename: input.Filename}); err != nil {
		return errorResult(err), nil
	}

	return successResult(ops.ValidateText(input.Content, input.Filename))
}

// HandleAnalyze handles the prompt_analyze tool call.
func (h *Handlers) HandleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DocumentRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	doc, err := ops.ParseDocument(ops.ParseInput{Content: input.Content, Filename: input.Filename})
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AnalyzeDocument(ctx, h.cfg, doc)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCheck handles the prompt_check tool call.
func (h *Handlers) HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CheckRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Check(h.cfg, ops.InlineInput{Content: input.Text, Type: input.Type, Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error messages are replaced so causes are not leaked.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if evalErr, ok := err.(*errors.EvalError); ok {
		errorObj := map[string]any{
			"code":    evalErr.Code,
			"message": evalErr.Message,
			"status":  evalErr.Status,
		}
		if evalErr.Code != errors.ErrInternal && evalErr.Details != nil {
			errorObj["details"] = evalErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
