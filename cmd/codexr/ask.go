package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/history"
	"github.com/ashureev/codexr/internal/llm"
	"github.com/ashureev/codexr/internal/pipeline"
	"github.com/ashureev/codexr/internal/render"
	"github.com/ashureev/codexr/internal/search"
	"github.com/charmbracelet/glamour"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type askOptions struct {
	verbosity string
	live      bool
	user      string
	provider  string
	asJSON    bool
	raw       bool
}

func newAskCmd() *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question and render the structured answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVar(&opts.verbosity, "verbosity", string(pipeline.VerbosityNormal), "concise, normal or detailed")
	cmd.Flags().BoolVar(&opts.live, "live", false, "ground the answer with a live web search")
	cmd.Flags().StringVar(&opts.user, "user", "", "save the answer to this user's history")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "override MODEL_PROVIDER (gemini, openrouter, openai, demo)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the answer as JSON")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print Markdown without terminal styling")
	return cmd
}

func runAsk(ctx context.Context, out, errOut io.Writer, query string, opts askOptions) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("enter a question first")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.provider != "" {
		cfg.Model.Provider = strings.ToLower(opts.provider)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	provider, err := llm.New(ctx, cfg.Model)
	if err != nil {
		return err
	}
	p := pipeline.New(provider, search.NewClient(cfg.Search), pipeline.Options{
		MaxOutputTokens:  cfg.Model.MaxOutputTokens,
		Temperature:      cfg.Model.Temperature,
		ModelTimeout:     cfg.Model.Timeout,
		MaxSearchResults: cfg.Search.MaxResults,
	})

	req := pipeline.Request{
		Query:     query,
		Verbosity: pipeline.ParseVerbosity(opts.verbosity),
		LiveMode:  opts.live,
	}
	answer := withSpinner(errOut, "Generating answer", func() domain.Answer {
		return p.Answer(ctx, req)
	})

	if opts.user != "" {
		store, err := history.NewFileStore(cfg.HistoryDir)
		if err != nil {
			slog.Warn("history unavailable", "error", err)
		} else if err := store.Save(ctx, opts.user, domain.HistoryEntry{Query: query, Answer: answer}); err != nil {
			slog.Warn("failed to save history", "error", err)
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"query": query, "answer": answer})
	}
	return printMarkdown(out, render.Markdown(query, answer), opts.raw)
}

// withSpinner shows an indeterminate spinner on w while fn runs.
func withSpinner[T any](w io.Writer, description string, fn func() T) T {
	if f, ok := w.(*os.File); !ok || !isTerminal(f) {
		return fn()
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	result := fn()
	close(done)
	_ = bar.Finish()
	return result
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func printMarkdown(w io.Writer, md string, raw bool) error {
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	styled, err := renderer.Render(md)
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	_, err = io.WriteString(w, styled)
	return err
}
