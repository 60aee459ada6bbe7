// Package context assembles the optional context bundle for a query: shell
// history, prior interactions, and man-page summaries. Every source is
// best-effort and individually capped; a missing file or absent man page
// degrades that source to empty instead of failing the query.
package context

import "context"

// Retriever is the interface all context sources implement. Each retriever
// collects one kind of context relevant to the query.
type Retriever interface {
	// Name returns the section label used for this source in the prompt.
	Name() string

	// Retrieve returns the context text for the query, or "" when the source
	// has nothing relevant.
	Retrieve(ctx context.Context, query string) (string, error)
}
