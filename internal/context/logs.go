package context

import (
	"context"
	"strings"

	"github.com/mimirsh/mimir/internal/interaction"
)

// DefaultLogLimit is the default number of interaction log lines kept.
const DefaultLogLimit = 20

// LogRetriever surfaces prior interactions matching the query so the model
// can see what was asked, and answered, before.
type LogRetriever struct {
	log   *interaction.Log
	limit int
}

// NewLogRetriever creates a retriever over the interaction log. If limit is 0
// or negative, DefaultLogLimit is used.
func NewLogRetriever(log *interaction.Log, limit int) *LogRetriever {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &LogRetriever{log: log, limit: limit}
}

// Name returns the retriever name.
func (r *LogRetriever) Name() string {
	return "previous_interactions"
}

// Retrieve returns matching interaction log lines joined by newlines.
func (r *LogRetriever) Retrieve(_ context.Context, query string) (string, error) {
	lines, err := r.log.Search(query, r.limit)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}
