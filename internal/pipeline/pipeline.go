// Package pipeline composes one query end to end: resolve configuration,
// aggregate context, build the prompt, call the inference server, normalize
// the output, and record the interaction.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mimirsh/mimir/internal/config"
	mimirctx "github.com/mimirsh/mimir/internal/context"
	"github.com/mimirsh/mimir/internal/interaction"
	"github.com/mimirsh/mimir/internal/normalize"
	"github.com/mimirsh/mimir/internal/ollama"
	"github.com/mimirsh/mimir/internal/prompt"
)

// Outcome is the terminal state of a completed (non-fatal) run.
type Outcome int

const (
	// OutcomeSuccess means exactly one command was extracted.
	OutcomeSuccess Outcome = iota

	// OutcomeNoCommand means the model answered but no single command could
	// be extracted. Non-fatal and still logged, so repeated failures on the
	// same query are visible via --logs.
	OutcomeNoCommand
)

// Invocation is one parsed user request. Created by the CLI layer, consumed
// once, never mutated.
type Invocation struct {
	Query string

	WithHistory bool
	WithLogs    bool
	WithMan     bool

	// Overrides carries explicit --model/--profile/--temp values for this
	// invocation only.
	Overrides config.Overrides

	// OnChunk receives raw streaming chunks for display. Optional.
	OnChunk func(string)
}

// Result is the outcome handed back to the CLI layer.
type Result struct {
	Outcome Outcome
	Command string
	Model   string

	// Raw is the unnormalized model output, kept for diagnostics.
	Raw string
}

// Pipeline wires the stages together for repeated invocations.
type Pipeline struct {
	cfg    *config.Config
	client *ollama.Client
	log    *interaction.Log
	logger *zap.Logger
}

// Options configures a Pipeline.
type Options struct {
	Config         *config.Config
	Client         *ollama.Client
	InteractionLog *interaction.Log
	Logger         *zap.Logger
}

// New creates a pipeline. Config, Client and InteractionLog are required; a
// nil Logger is replaced with a no-op logger.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:    opts.Config,
		client: opts.Client,
		log:    opts.InteractionLog,
		logger: logger,
	}
}

// Run executes the full pipeline for one invocation. A returned error is
// fatal (config resolution, inference failure) and nothing is logged; the
// two non-error terminal states are Success and NoCommand, both logged.
func (p *Pipeline) Run(ctx context.Context, inv Invocation) (Result, error) {
	start := time.Now()

	resolved, err := p.cfg.Resolve(inv.Overrides)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve model settings: %w", err)
	}

	bundle := p.aggregate(ctx, inv)

	userPrompt := prompt.Build(inv.Query, bundle)
	p.logger.Debug("prompt built",
		zap.String("model", resolved.Model),
		zap.Float64("temperature", resolved.Temperature),
		zap.Int("context_sections", len(bundle.Sections)),
		zap.Int("prompt_chars", len(userPrompt)),
	)

	resp, err := p.client.Generate(ctx, ollama.Request{
		Model:       resolved.Model,
		Prompt:      userPrompt,
		System:      prompt.SystemInstruction,
		Temperature: resolved.Temperature,
		Stream:      p.cfg.Stream,
		OnChunk:     inv.OnChunk,
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{Model: resolved.Model, Raw: resp.Content}

	normalized := normalize.Normalize(resp.Content)
	answer := interaction.NoCommandMarker
	if normalized.Found {
		result.Outcome = OutcomeSuccess
		result.Command = normalized.Command
		answer = normalized.Command
	} else {
		result.Outcome = OutcomeNoCommand
		p.logger.Info("no command could be extracted",
			zap.String("query", inv.Query),
			zap.String("raw", resp.Content),
		)
	}

	// Logging is best-effort: the answer is never withheld because the log
	// write failed.
	if err := p.log.Append(interaction.Entry{
		Query:  inv.Query,
		Answer: answer,
		Model:  resolved.Model,
	}); err != nil {
		p.logger.Warn("failed to write interaction log", zap.Error(err))
	}

	p.logger.Debug("pipeline completed",
		zap.Bool("found", normalized.Found),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// aggregate builds the context bundle for the enabled sources, in the fixed
// history, logs, man order.
func (p *Pipeline) aggregate(ctx context.Context, inv Invocation) mimirctx.Bundle {
	var retrievers []mimirctx.Retriever
	if inv.WithHistory {
		retrievers = append(retrievers, mimirctx.NewHistoryRetriever(p.cfg.HistoryFile, p.cfg.MaxMatches))
	}
	if inv.WithLogs {
		retrievers = append(retrievers, mimirctx.NewLogRetriever(p.log, p.cfg.MaxMatches))
	}
	if inv.WithMan {
		retrievers = append(retrievers, mimirctx.NewManRetriever(p.cfg.ManBudget))
	}
	if len(retrievers) == 0 {
		return mimirctx.Bundle{}
	}

	return mimirctx.NewAggregator(p.logger, retrievers...).Aggregate(ctx, inv.Query)
}
