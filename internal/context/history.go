package context

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultHistoryLimit is the default number of history lines kept.
const DefaultHistoryLimit = 20

// HistoryRetriever reads the shell history file and returns the most recent
// lines matching the query, newest last.
type HistoryRetriever struct {
	path  string
	limit int
}

// NewHistoryRetriever creates a retriever over the given history file. A
// leading "~/" in the path is expanded against the user's home directory. If
// limit is 0 or negative, DefaultHistoryLimit is used.
func NewHistoryRetriever(path string, limit int) *HistoryRetriever {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryRetriever{
		path:  ExpandHome(path),
		limit: limit,
	}
}

// Name returns the retriever name.
func (r *HistoryRetriever) Name() string {
	return "shell_history"
}

// Retrieve returns matching history lines joined by newlines. Substring
// matches win; when the query matches nothing verbatim, fuzzy matching is
// used as a fallback so near-misses still surface.
func (r *HistoryRetriever) Retrieve(_ context.Context, query string) (string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	matched := substringMatches(lines, query)
	if len(matched) == 0 {
		matched = fuzzyMatches(lines, query)
	}

	if len(matched) > r.limit {
		matched = matched[len(matched)-r.limit:]
	}

	return strings.Join(matched, "\n"), nil
}

// substringMatches keeps lines containing the query, case-insensitively,
// preserving file order (oldest first).
func substringMatches(lines []string, query string) []string {
	needle := strings.ToLower(query)
	var matched []string
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), needle) {
			matched = append(matched, line)
		}
	}
	return matched
}

// fuzzyMatches returns fuzzy-matched lines restored to file order so the
// newest-last contract still holds.
func fuzzyMatches(lines []string, query string) []string {
	results := fuzzy.Find(query, lines)
	if len(results) == 0 {
		return nil
	}

	keep := make(map[int]bool, len(results))
	for _, m := range results {
		keep[m.Index] = true
	}

	var matched []string
	for i, line := range lines {
		if keep[i] {
			matched = append(matched, line)
		}
	}
	return matched
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
