package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/prompteval/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
                                 _                  _
   _ __  _ __ ___  _ __ ___  _ __ | |_ _____   ____ _| |
  | '_ \| '__/ _ \| '_ ' _ \| '_ \| __/ _ \ \ / / _' | |
  | |_) | | | (_) | | | | | | |_) | ||  __/\ V / (_| | |
  | .__/|_|  \___/|_| |_| |_| .__/ \__\___| \_/ \__,_|_|
  |_|                       |_|

  Evaluate prompts in markdown files and suggest improvements.

  Usage: prompteval <command> [options]
         prompteval --help

  MCP server mode requires piped input.`)
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) < 2 {
		// No args + interactive terminal → show banner and exit
		if isTerminal() {
			printBanner()
			return
		}

		// Piped stdin → MCP server
		cfg, err := loadConfig("")
		if err != nil {
			exit(outputError(err))
		}
		if err := mcp.Run(cfg, Version); err != nil {
			exit(err)
		}
		return
	}

	if err := newCLIApp(os.Stdin).Run(os.Args); err != nil {
		exit(err)
	}
}

// exit prints err and terminates with its exit code. Commands that already
// reported their failure return an empty message.
func exit(err error) {
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}
	code := 1
	if ec, ok := err.(cli.ExitCoder); ok {
		code = ec.ExitCode()
	}
	os.Exit(code)
}
