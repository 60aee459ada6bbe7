package context

import (
	"context"

	"go.uber.org/zap"
)

// TotalBudget bounds the combined context text so the bundle cannot crowd the
// model's effective context window.
const TotalBudget = 4000

// Section is one labeled context blob.
type Section struct {
	Name string
	Text string
}

// Bundle is the combined context for one invocation, immutable once built.
// Sections keep the order their retrievers were registered in, so prompt
// shape is deterministic.
type Bundle struct {
	Sections []Section
}

// Empty reports whether the bundle carries no context at all.
func (b Bundle) Empty() bool {
	return len(b.Sections) == 0
}

// Aggregator runs an ordered list of retrievers and collects their output.
type Aggregator struct {
	retrievers []Retriever
	logger     *zap.Logger
}

// NewAggregator creates an aggregator over the given retrievers. Order is
// preserved in the resulting bundle. A nil logger is replaced with a no-op
// logger.
func NewAggregator(logger *zap.Logger, retrievers ...Retriever) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{retrievers: retrievers, logger: logger}
}

// Aggregate builds the context bundle for a query. A failing source is logged
// and degraded to empty; it never aborts the pipeline. The combined text is
// bounded by TotalBudget, truncating later sections first.
func (a *Aggregator) Aggregate(ctx context.Context, query string) Bundle {
	var bundle Bundle
	remaining := TotalBudget

	for _, r := range a.retrievers {
		text, err := r.Retrieve(ctx, query)
		if err != nil {
			a.logger.Warn("context source unavailable",
				zap.String("source", r.Name()),
				zap.Error(err),
			)
			continue
		}
		if text == "" {
			continue
		}

		if len(text) > remaining {
			text = text[:remaining]
		}
		if text == "" {
			break
		}
		remaining -= len(text)

		bundle.Sections = append(bundle.Sections, Section{Name: r.Name(), Text: text})

		if remaining <= 0 {
			break
		}
	}

	return bundle
}
