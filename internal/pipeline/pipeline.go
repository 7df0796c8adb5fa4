// Package pipeline turns a user question into a structured Answer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/codexr/internal/classifier"
	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/llm"
	"github.com/ashureev/codexr/internal/metrics"
	"github.com/ashureev/codexr/internal/schema"
	"github.com/ashureev/codexr/internal/search"
)

// Outcome labels recorded for every call.
const (
	OutcomeGreeting        = "greeting"
	OutcomeFarewell        = "farewell"
	OutcomeNotSupported    = "not_supported"
	OutcomeOK              = "ok"
	OutcomeParseError      = "parse_error"
	OutcomeValidationError = "validation_error"
	OutcomeProviderError   = "provider_error"
)

// Searcher finds web pages for grounding.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]search.Result, error)
}

// Request is one question.
type Request struct {
	Query     string
	Verbosity Verbosity
	LiveMode  bool
}

// Options tunes model and search calls. Zero values use the defaults.
type Options struct {
	MaxOutputTokens  int
	Temperature      float32
	ModelTimeout     time.Duration
	MaxSearchResults int
	Logger           *slog.Logger
}

const (
	defaultMaxOutputTokens  = 2000
	defaultTemperature      = 0.2
	defaultModelTimeout     = 60 * time.Second
	defaultMaxSearchResults = 5
)

// Pipeline holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	provider llm.Provider
	searcher Searcher
	opts     Options
	logger   *slog.Logger
}

// New creates a Pipeline. searcher may be nil, in which case live mode adds
// no grounding.
func New(provider llm.Provider, searcher Searcher, opts Options) *Pipeline {
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = defaultMaxOutputTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = defaultModelTimeout
	}
	if opts.MaxSearchResults <= 0 {
		opts.MaxSearchResults = defaultMaxSearchResults
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{provider: provider, searcher: searcher, opts: opts, logger: logger}
}

// ProviderName returns the display name of the model backend.
func (p *Pipeline) ProviderName() string {
	return p.provider.Name()
}

// Answer runs the question through intent checks, the topic gate, optional
// grounding and the model. It always returns a well-formed Answer; failures
// are reported inside it as a single explanatory subtask.
func (p *Pipeline) Answer(ctx context.Context, req Request) domain.Answer {
	start := time.Now()
	normalized := strings.ToLower(strings.TrimSpace(req.Query))
	answerContext := classifier.Context(req.Query)
	target := classifier.Target(answerContext)

	answer, outcome := p.answer(ctx, req, normalized, answerContext, target)

	metrics.PipelineOutcomes.WithLabelValues(outcome, answerContext).Inc()
	p.logger.Info("answer produced",
		"outcome", outcome,
		"context", answerContext,
		"provider", p.provider.Name(),
		"live_mode", req.LiveMode,
		"duration", time.Since(start),
	)
	return answer
}

func (p *Pipeline) answer(ctx context.Context, req Request, normalized, answerContext, target string) (domain.Answer, string) {
	if sc, ok := matchIntent(normalized); ok {
		return domain.NewMessageAnswer(answerContext, target, sc.title, sc.details), sc.outcome
	}

	var docs []domain.DocRef
	if req.LiveMode {
		docs = p.ground(ctx, req.Query)
	}

	prompt, err := buildPrompt(req.Query, req.Verbosity, docs)
	if err != nil {
		p.logger.Error("failed to build prompt", "error", err)
		return p.providerError(answerContext, target, err), OutcomeProviderError
	}

	raw, err := p.generate(ctx, req.Query, prompt)
	if err != nil {
		p.logger.Warn("model call failed", "provider", p.provider.Name(), "error", err)
		return p.providerError(answerContext, target, err), OutcomeProviderError
	}

	answer, err := schema.ValidateJSON([]byte(raw))
	if err != nil {
		var perr *schema.ParseError
		if errors.As(err, &perr) {
			p.logger.Warn("model output is not JSON", "error", err)
			return domain.NewMessageAnswer(answerContext, target, "JSON Parse Error",
				"Failed to parse LLM response as JSON: "+perr.Error()), OutcomeParseError
		}
		p.logger.Warn("model output failed validation", "error", err)
		return domain.NewMessageAnswer(answerContext, target, "Validation Error",
			"Response validation failed: "+err.Error()), OutcomeValidationError
	}
	return answer, OutcomeOK
}

func (p *Pipeline) generate(ctx context.Context, query, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.ModelTimeout)
	defer cancel()

	start := time.Now()
	raw, err := p.provider.Generate(ctx, llm.GenerateRequest{
		Prompt:          prompt,
		Query:           query,
		MaxOutputTokens: p.opts.MaxOutputTokens,
		Temperature:     p.opts.Temperature,
		JSON:            true,
	})
	metrics.ModelLatency.WithLabelValues(p.provider.Name()).Observe(time.Since(start).Seconds())
	return raw, err
}

// ground returns search results as doc references. Search failures are
// logged and treated as no results.
func (p *Pipeline) ground(ctx context.Context, query string) []domain.DocRef {
	if p.searcher == nil {
		return nil
	}
	results, err := p.searcher.Search(ctx, query, p.opts.MaxSearchResults)
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		p.logger.Warn("web search failed, continuing without grounding", "error", err)
		return nil
	}
	metrics.SearchRequests.WithLabelValues("ok").Inc()

	docs := make([]domain.DocRef, 0, len(results))
	for _, r := range results {
		docs = append(docs, domain.DocRef{Title: r.Title, URL: r.URL})
	}
	return docs
}

func (p *Pipeline) providerError(answerContext, target string, err error) domain.Answer {
	name := p.provider.Name()
	return domain.NewMessageAnswer(answerContext, target, name+" Error",
		fmt.Sprintf("Error calling %s API: %v", name, err))
}
