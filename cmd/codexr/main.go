// codexr asks the CodeXR pipeline from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ashureev/codexr/internal/config"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	errColor     = color.New(color.FgRed)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = errColor.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "codexr",
		Short:   "CodeXR - structured answers for AR/VR developers",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

			if err := godotenv.Load(); err != nil {
				slog.Debug("No .env file found, using environment variables")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(newAskCmd(), newHistoryCmd(), newHealthCmd())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		slog.Warn(w)
	}
	return cfg, nil
}

func printHeading(w io.Writer, format string, args ...any) {
	_, _ = headingColor.Fprintf(w, format+"\n", args...)
}

func printOK(w io.Writer, msg string) {
	_, _ = okColor.Fprintln(w, msg)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
