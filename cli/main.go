// Package main is the entry point for the chatcall CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nox-hq/chatcall/completion"
	"github.com/nox-hq/chatcall/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the exit code.
// 0 = the completion ran (whether it succeeded or failed), 2 = usage or
// configuration error.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("chatcall", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  string
		verboseFlag bool
		versionFlag bool
	)

	fs.StringVar(&configPath, "config", config.DefaultPath, "path to the config file")
	fs.BoolVar(&verboseFlag, "verbose", false, "enable debug logging")
	fs.BoolVar(&verboseFlag, "v", false, "enable debug logging (shorthand)")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: chatcall [flags] [command]\n\n")
		fmt.Fprintf(stderr, "Sends one chat completion request and prints the reply.\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  version        Print version and exit\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if versionFlag {
		printVersion(stdout)
		return 0
	}

	if remaining := fs.Args(); len(remaining) > 0 {
		switch remaining[0] {
		case "version":
			printVersion(stdout)
			return 0
		default:
			fmt.Fprintf(stderr, "unknown command: %s\n", remaining[0])
			fmt.Fprintln(stderr, "Usage: chatcall [flags] [command]")
			return 2
		}
	}

	return runCompletion(configPath, verboseFlag, stdout, stderr)
}

func runCompletion(configPath string, verbose bool, stdout, stderr io.Writer) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	apiKey, err := cfg.ResolveAPIKey(os.Getenv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	inv := completion.New(completion.Config{
		APIKey:  apiKey,
		BaseURL: cfg.BaseURL,
		Timeout: timeout,
	}, completion.WithLogger(newLogger(stderr, verbose)))

	newRenderer(stdout, stderr).Render(inv.Run(context.Background()))
	return 0
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "chatcall %s (commit: %s, built: %s)\n", version, commit, date)
}
