package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/xeipuuv/gojsonschema"

	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/prompt"
)

const (
	DefaultModel               = "claude-sonnet-4-20250514"
	DefaultAnalysisMaxTokens   = 2000
	DefaultSuggestionMaxTokens = 3000
)

// CompleteFunc sends one system + user exchange to a model and returns the
// reply text.
type CompleteFunc func(ctx context.Context, system, user string, maxTokens int64) (string, error)

// Config configures a Client.
type Config struct {
	APIKey              string
	Model               string
	AnalysisMaxTokens   int64
	SuggestionMaxTokens int64
}

// ConfigFromEnv reads ANTHROPIC_API_KEY, PROMPTEVAL_LLM_MODEL and
// PROMPTEVAL_LLM_MAX_TOKENS (applies to both request kinds).
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:  os.Getenv("PROMPTEVAL_LLM_MODEL"),
	}
	if v := os.Getenv("PROMPTEVAL_LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.AnalysisMaxTokens = n
			cfg.SuggestionMaxTokens = n
		}
	}
	return cfg
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.AnalysisMaxTokens <= 0 {
		c.AnalysisMaxTokens = DefaultAnalysisMaxTokens
	}
	if c.SuggestionMaxTokens <= 0 {
		c.SuggestionMaxTokens = DefaultSuggestionMaxTokens
	}
	return c
}

// Client implements Analyzer on top of a CompleteFunc.
type Client struct {
	complete CompleteFunc
	cfg      Config
}

// New creates a Client backed by the Anthropic Messages API.
// Returns LLM_UNAVAILABLE when no API key is configured.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewLLMUnavailable("ANTHROPIC_API_KEY environment variable not set")
	}
	cfg = cfg.withDefaults()

	sdk := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	model := cfg.Model

	complete := func(ctx context.Context, system, user string, maxTokens int64) (string, error) {
		message, err := sdk.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: maxTokens,
			System:    []anthropic.TextBlockParam{{Text: system}},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
			},
		})
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		for _, block := range message.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		return sb.String(), nil
	}

	return &Client{complete: complete, cfg: cfg}, nil
}

// NewWithCompleter creates a Client that sends requests through fn.
func NewWithCompleter(fn CompleteFunc, cfg Config) *Client {
	return &Client{complete: fn, cfg: cfg.withDefaults()}
}

// Model returns the configured model ID.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Analyze asks the model to review p.
func (c *Client) Analyze(ctx context.Context, p *prompt.Prompt) (*Analysis, error) {
	reply, err := c.complete(ctx, analysisSystemPrompt, analysisMessage(p), c.cfg.AnalysisMaxTokens)
	if err != nil {
		return nil, errors.NewLLMFailed(err)
	}

	var a Analysis
	if err := decodeReply(reply, analysisSchema, &a); err != nil {
		return nil, errors.NewLLMFailed(err)
	}
	a.normalize()
	return &a, nil
}

// Suggest asks the model for a rewrite of p.
func (c *Client) Suggest(ctx context.Context, p *prompt.Prompt, h *heuristics.Result, focus []string) (*Suggestion, error) {
	reply, err := c.complete(ctx, suggestionSystemPrompt, suggestionMessage(p, h, focus), c.cfg.SuggestionMaxTokens)
	if err != nil {
		return nil, errors.NewLLMFailed(err)
	}

	var s Suggestion
	if err := decodeReply(reply, suggestionSchema, &s); err != nil {
		return nil, errors.NewLLMFailed(err)
	}
	s.Original = p.Content
	if s.Changes == nil {
		s.Changes = []Change{}
	}
	return &s, nil
}

// decodeReply extracts the JSON document from a model reply, validates it
// against schema and decodes it into v.
func decodeReply(reply, schema string, v any) error {
	raw := ExtractJSON(reply)

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate response: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ExtractJSON pulls the JSON payload out of a model reply: the body of the
// first ```json fence, else the first bare ``` fence, else the whole reply.
func ExtractJSON(reply string) string {
	if _, after, ok := strings.Cut(reply, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	if _, after, ok := strings.Cut(reply, "```"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(reply)
}
