package mcp

import "github.com/mark3labs/mcp-go/mcp"

var parseToolDef = mcp.NewTool("prompt_parse",
	mcp.WithDescription(
		"Parse a markdown document into prompts. Prompts are delimited by YAML frontmatter (---) "+
			"or '## System Prompt' / '## User Prompt' headings.",
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("Markdown document text"),
	),
	mcp.WithString("filename",
		mcp.Description("Source filename, used for skill prompt names (default: untitled.md)"),
	),
)

var validateToolDef = mcp.NewTool("prompt_validate",
	mcp.WithDescription("Check that a markdown document contains well-formed prompts and list every problem found."),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("Markdown document text"),
	),
	mcp.WithString("filename",
		mcp.Description("Source filename (default: untitled.md)"),
	),
)

var analyzeToolDef = mcp.NewTool("prompt_analyze",
	mcp.WithDescription(
		"Score every prompt in a markdown document on clarity, specificity, structure, completeness, "+
			"output format and guardrails. Returns per-dimension scores, issues and suggestions.",
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("Markdown document text"),
	),
	mcp.WithString("filename",
		mcp.Description("Source filename (default: untitled.md)"),
	),
)

var checkToolDef = mcp.NewTool("prompt_check",
	mcp.WithDescription("Score a single prompt given as plain text, without any markdown delimiters."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("Prompt text"),
	),
	mcp.WithString("type",
		mcp.Description("Prompt type"),
		mcp.Enum("system", "user", "skill"),
		mcp.DefaultString("user"),
	),
	mcp.WithString("name",
		mcp.Description("Display name (default: inline-prompt)"),
	),
)
