package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agenthands/quanta/pkg/workspace"
)

var (
	verbose     bool
	maxFileSize int

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "quanta",
	Short: "Quanta translator: compile .quanta programs to Python",
	Long: `Quanta is a tiny teaching language that compiles to Python 3.

Commands:
  build   Compile a .quanta file into a .py file
  run     Compile a .quanta file and execute it on the embedded interpreter
  tokens  Print the token stream of a .quanta file
  ast     Print the syntax tree of a .quanta file as JSON
  draft   Ask Gemini to write a Quanta program for a task
`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&maxFileSize, "max-size", workspace.DefaultMaxFileSize, "largest source file accepted, in bytes")

	rootCmd.AddCommand(buildCmd, runCmd, tokensCmd, astCmd, draftCmd)
}

// sourceArg returns the file named on the command line, or index.quanta.
func sourceArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return workspace.DefaultSource
}

// readSource reads path through a workspace rooted at its directory.
func readSource(path string) (string, error) {
	ws, err := workspace.New(filepath.Dir(path), maxFileSize)
	if err != nil {
		return "", err
	}
	src, err := ws.ReadSource(filepath.Base(path))
	if err != nil {
		return "", err
	}
	logger.Debug("read source", "path", path, "bytes", len(src))
	return src, nil
}
