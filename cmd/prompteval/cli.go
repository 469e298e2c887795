package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/prompteval/internal/config"
	"github.com/hpungsan/prompteval/internal/db"
	"github.com/hpungsan/prompteval/internal/errors"
	"github.com/hpungsan/prompteval/internal/heuristics"
	"github.com/hpungsan/prompteval/internal/llm"
	"github.com/hpungsan/prompteval/internal/mcp"
	"github.com/hpungsan/prompteval/internal/ops"
	"github.com/hpungsan/prompteval/internal/prompt"
	"github.com/hpungsan/prompteval/internal/watcher"
	"github.com/hpungsan/prompteval/internal/web"
)

// newAnalyzer builds the LLM collaborator. Tests replace it with a fake.
var newAnalyzer = func() (llm.Analyzer, error) {
	client, err := llm.New(llm.ConfigFromEnv())
	if err != nil {
		return nil, err
	}
	log.Debug().Str("model", client.Model()).Msg("llm client ready")
	return client, nil
}

// configFlag is shared by every command that scores prompts.
var configFlag = &cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Custom rules config file (YAML)"}

// newCLIApp creates the CLI application with all commands.
// stdin is read by check --stdin.
func newCLIApp(stdin io.Reader) *cli.App {
	app := &cli.App{
		Name:    "prompteval",
		Usage:   "Evaluate prompts in markdown files and suggest improvements",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			analyzeCmd(),
			validateCmd(),
			suggestCmd(),
			checkCmd(stdin),
			initCmd(),
			rulesCmd(),
			mcpCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Start the web UI and HTTP API",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "127.0.0.1", Usage: "Host to bind to"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to run the server on"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Reload the file when it changes"},
			configFlag,
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return outputError(err)
			}

			file := c.Args().First()
			if c.Bool("watch") && file == "" {
				return outputError(errors.NewInvalidRequest("--watch requires a file"))
			}

			database, err := db.Open()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			defer database.Close()

			analyzer, err := newAnalyzer()
			if err != nil {
				log.Warn().Msg("ANTHROPIC_API_KEY not set; LLM analysis and suggestions are disabled")
			}
			jobs := ops.NewJobRunner(database, analyzer)

			if file != "" {
				fmt.Fprintf(c.App.Writer, "Loading file: %s\n", file)
				if err := loadFile(c.Context, c.App.ErrWriter, database, file); err != nil {
					return outputError(err)
				}
			}

			if c.Bool("watch") {
				w, err := watcher.New(file, func() {
					if err := loadFile(context.Background(), c.App.ErrWriter, database, file); err != nil {
						log.Error().Err(err).Str("file", file).Msg("reload failed")
						return
					}
					log.Info().Str("file", file).Msg("reloaded")
				})
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if err := w.Start(); err != nil {
					return outputError(errors.NewInternal(err))
				}
				defer w.Stop()
			}

			srv := web.NewServer(database, cfg, jobs, web.Options{
				Version: Version,
				Host:    c.String("host"),
				Port:    c.Int("port"),
			})
			if err := web.Run(srv, jobs); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// loadFile validates a markdown file, reports any problems to errOut, and
// makes its prompts the current set.
func loadFile(ctx context.Context, errOut io.Writer, database *sql.DB, path string) error {
	content, err := readFile(path)
	if err != nil {
		return err
	}

	check := ops.ValidateText(content, filepath.Base(path))
	if !check.Valid {
		fmt.Fprintln(errOut, "Warning: File has issues:")
		for _, e := range check.Errors {
			fmt.Fprintf(errOut, "  - %s\n", e)
		}
	}

	_, err = ops.ParseText(ctx, database, ops.ParseInput{Content: content, Filename: filepath.Base(path)})
	return err
}

// resultRecord is one prompt's entry in an --output file.
type resultRecord struct {
	Heuristic *heuristics.Result `json:"heuristic"`
	LLM       *llm.Analysis      `json:"llm,omitempty"`
	LLMError  string             `json:"llm_error,omitempty"`
}

// analyzeCmd creates the analyze command.
func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Run heuristic analysis on prompts in a file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file for analysis results (JSON)"},
			configFlag,
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show detailed output"},
			&cli.BoolFlag{Name: "llm", Aliases: []string{"l"}, Usage: "Include LLM-powered deep analysis (requires ANTHROPIC_API_KEY)"},
		},
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			path, err := requireFileArg(c)
			if err != nil {
				return outputError(err)
			}
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return outputError(err)
			}

			var analyzer llm.Analyzer
			if c.Bool("llm") {
				if analyzer, err = newAnalyzer(); err != nil {
					return outputError(err)
				}
			}

			content, err := readFile(path)
			if err != nil {
				return outputError(err)
			}
			fmt.Fprintf(out, "Analyzing: %s\n", path)

			report, err := ops.AnalyzeDocument(c.Context, cfg, prompt.Parse(content, filepath.Base(path)))
			if err != nil {
				return outputError(err)
			}
			fmt.Fprintf(out, "Found %d prompt(s)\n\n", len(report.Entries))

			records := make([]resultRecord, 0, len(report.Entries))
			for _, e := range report.Entries {
				log.Debug().Str("prompt", e.Prompt.Name).Int("issues", e.Result.IssueCount()).Msg("scored")
				fmt.Fprintf(out, "%s %s\n", e.Prompt.Type.Badge(), e.Prompt.Name)
				fmt.Fprintf(out, "    Overall Score: %d/100 (%s)\n", e.Result.OverallScore, e.Label)
				if c.Bool("verbose") {
					printDimensions(out, "    ", e.Result)
					printIssues(out, "    ", "Issues:", e.Result, 5)
				}

				rec := resultRecord{Heuristic: e.Result}
				if analyzer != nil {
					fmt.Fprintln(out, "    Running LLM analysis...")
					p := e.Prompt
					analysis, err := analyzer.Analyze(c.Context, &p)
					if err != nil {
						rec.LLMError = errors.As(err).Message
						fmt.Fprintf(c.App.ErrWriter, "    LLM Error: %s\n", rec.LLMError)
					} else {
						rec.LLM = analysis
						printAnalysis(out, "    ", analysis, 3)
					}
				}
				records = append(records, rec)
				fmt.Fprintln(out)
			}

			if path := c.String("output"); path != "" {
				if err := writeJSON(path, records); err != nil {
					return outputError(err)
				}
				fmt.Fprintf(out, "Results saved to: %s\n", path)
			}
			return nil
		},
	}
}

// validateCmd creates the validate command.
func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a markdown file's prompt format",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path, err := requireFileArg(c)
			if err != nil {
				return outputError(err)
			}
			content, err := readFile(path)
			if err != nil {
				return outputError(err)
			}

			result := ops.ValidateText(content, filepath.Base(path))
			if !result.Valid {
				fmt.Fprintln(c.App.ErrWriter, "Validation failed:")
				for _, e := range result.Errors {
					fmt.Fprintf(c.App.ErrWriter, "  - %s\n", e)
				}
				return cli.Exit("", 1)
			}

			fmt.Fprintf(c.App.Writer, "Valid! Found %d prompt(s):\n", len(result.Prompts))
			for _, p := range result.Prompts {
				fmt.Fprintf(c.App.Writer, "  %s %s (lines %d-%d)\n", p.Type.Badge(), p.Name, p.LineStart, p.LineEnd)
			}
			return nil
		},
	}
}

// suggestCmd creates the suggest command.
func suggestCmd() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Generate LLM-powered improvement suggestions for a prompt",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "Name of the prompt to improve (default: first prompt)"},
			&cli.StringFlag{Name: "focus", Aliases: []string{"f"}, Usage: "Comma-separated focus areas (e.g. clarity,specificity)"},
			configFlag,
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file for the suggested prompt"},
		},
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			path, err := requireFileArg(c)
			if err != nil {
				return outputError(err)
			}
			analyzer, err := newAnalyzer()
			if err != nil {
				return outputError(err)
			}
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return outputError(err)
			}
			content, err := readFile(path)
			if err != nil {
				return outputError(err)
			}

			database, err := db.Open()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			defer database.Close()

			loaded, err := ops.ParseText(c.Context, database, ops.ParseInput{Content: content, Filename: filepath.Base(path)})
			if err != nil {
				return outputError(err)
			}
			doc := &prompt.Document{Filename: loaded.Filename, Prompts: loaded.Prompts}

			target := &doc.Prompts[0]
			if name := c.String("prompt"); name != "" {
				if target = doc.Find(name); target == nil {
					fmt.Fprintln(out, "Available prompts:")
					for _, n := range doc.Names() {
						fmt.Fprintf(out, "  - %s\n", n)
					}
					return outputError(errors.NewNotFound("prompt", name))
				}
			}
			fmt.Fprintf(out, "Generating suggestions for: %s\n\n", target.Name)

			if _, err := ops.RunHeuristics(c.Context, database, cfg, target.ID); err != nil {
				return outputError(err)
			}

			fmt.Fprintln(out, "Calling LLM for suggestions...")
			s, err := ops.Suggest(c.Context, database, analyzer, ops.SuggestInput{
				PromptID:   target.ID,
				FocusAreas: splitList(c.String("focus")),
			})
			if err != nil {
				return outputError(err)
			}

			printSuggestion(out, s)

			if path := c.String("output"); path != "" {
				if err := os.WriteFile(path, []byte(s.Suggested), 0o644); err != nil {
					return outputError(errors.NewInternal(err))
				}
				fmt.Fprintf(out, "\nSaved to: %s\n", path)
			}
			return nil
		},
	}
}

// checkCmd creates the check command.
func checkCmd(stdin io.Reader) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Analyze a prompt string directly (without a file)",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "stdin", Aliases: []string{"s"}, Usage: "Read the prompt from stdin"},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "user", Usage: "Prompt type: system, user or skill"},
			configFlag,
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file for analysis results (JSON)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show detailed output"},
			&cli.BoolFlag{Name: "llm", Aliases: []string{"l"}, Usage: "Include LLM-powered deep analysis"},
		},
		Action: func(c *cli.Context) error {
			out := c.App.Writer
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return outputError(err)
			}

			var text string
			switch {
			case c.Bool("stdin"):
				data, err := io.ReadAll(stdin)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				text = strings.TrimSpace(string(data))
			case c.NArg() > 0:
				text = c.Args().First()
			default:
				return outputError(errors.NewInvalidRequest("Provide prompt text as argument or use --stdin"))
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("Prompt text is empty"))
			}

			var analyzer llm.Analyzer
			if c.Bool("llm") {
				if analyzer, err = newAnalyzer(); err != nil {
					return outputError(err)
				}
			}

			kind := strings.ToLower(c.String("type"))
			entry, err := ops.Check(cfg, ops.InlineInput{Content: text, Type: kind})
			if err != nil {
				return outputError(err)
			}

			fmt.Fprintf(out, "Analyzing %s prompt (%d chars)\n\n", kind, entry.Chars)
			fmt.Fprintf(out, "Overall Score: %d/100 (%s)\n", entry.Result.OverallScore, entry.Label)
			if c.Bool("verbose") {
				printDimensions(out, "  ", entry.Result)
				printIssues(out, "", "\nIssues:", entry.Result, 0)
				printSuggestions(out, "\nSuggestions:", entry.Result)
			}

			rec := resultRecord{Heuristic: entry.Result}
			if analyzer != nil {
				fmt.Fprintln(out, "\nRunning LLM analysis...")
				analysis, err := analyzer.Analyze(c.Context, &entry.Prompt)
				if err != nil {
					rec.LLMError = errors.As(err).Message
					fmt.Fprintf(c.App.ErrWriter, "LLM Error: %s\n", rec.LLMError)
				} else {
					rec.LLM = analysis
					printAnalysis(out, "", analysis, 0)
				}
			}

			if path := c.String("output"); path != "" {
				if err := writeJSON(path, rec); err != nil {
					return outputError(err)
				}
				fmt.Fprintf(out, "\nResults saved to: %s\n", path)
			}
			return nil
		},
	}
}

// samplePrompts is written by init.
const samplePrompts = `# My Prompts

## System Prompt: Assistant
You are a helpful AI assistant. Your responsibilities include:
- Answering questions clearly and concisely
- Providing accurate information
- Asking for clarification when needed

Always be polite and professional. Never make up information.

## User Prompt: Code Review
Please review the following code for:
1. Potential bugs or errors
2. Performance issues
3. Code style and readability

Provide your feedback in a structured format with specific line references.

## User Prompt: Summarization
Summarize the following text in 2-3 sentences, focusing on the key points.
`

// initCmd creates the init command.
func initCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create a sample prompts.md file",
		ArgsUsage: "[dir]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing prompts.md"},
		},
		Action: func(c *cli.Context) error {
			dir := c.Args().First()
			if dir == "" {
				dir = "."
			}
			path := filepath.Join(dir, "prompts.md")

			if err := writeNew(path, []byte(samplePrompts), c.Bool("force")); err != nil {
				return outputError(err)
			}
			fmt.Fprintf(c.App.Writer, "Created sample file: %s\n", path)
			fmt.Fprintln(c.App.Writer, "\nRun 'prompteval serve prompts.md' to start the web UI.")
			return nil
		},
	}
}

// rulesCmd creates the rules command group.
func rulesCmd() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "Inspect or create analysis rule files",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective rule set as YAML",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c.String("config"))
					if err != nil {
						return outputError(err)
					}
					data, err := config.Marshal(cfg)
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					_, err = c.App.Writer.Write(data)
					return err
				},
			},
			{
				Name:      "init",
				Usage:     "Write the built-in rules to a file (default: .prompteval/rules.yaml)",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "Overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						path = filepath.Join(config.DirName, config.RulesFile)
					}
					data, err := config.Marshal(config.Default())
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					if err := writeNew(path, data, c.Bool("force")); err != nil {
						return outputError(err)
					}
					fmt.Fprintf(c.App.Writer, "Created rules file: %s\n", path)
					return nil
				},
			},
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the analysis tools over MCP (stdio)",
		Flags: []cli.Flag{configFlag},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"))
			if err != nil {
				return outputError(err)
			}
			return mcp.Run(cfg, Version)
		},
	}
}
