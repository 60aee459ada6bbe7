// Package interaction maintains mimir's append-only interaction log. Each
// completed query appends a USER/BOT/MODEL record; prior records are never
// rewritten. The log is read back only as a search-filtered subset when the
// --logs context source is enabled.
package interaction

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NoCommandMarker is recorded as the answer when no command could be
// extracted, so repeated failures on a query stay visible via --logs.
const NoCommandMarker = "<no command>"

const timestampLayout = "2006-01-02 15:04:05"

// Entry is one completed interaction.
type Entry struct {
	Timestamp time.Time
	Query     string
	Answer    string
	Model     string
}

// Log is an append-only, line-oriented interaction log.
type Log struct {
	path   string
	logger *zap.Logger
}

// NewLog creates a log over the given file path. A nil logger is replaced
// with a no-op logger.
func NewLog(path string, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{path: path, logger: logger}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes a single new record to the end of the log. It never rewrites
// prior entries.
func (l *Log) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	ts := e.Timestamp.Format(timestampLayout)

	var record strings.Builder
	fmt.Fprintf(&record, "[%s] USER: %s\n", ts, sanitize(e.Query))
	fmt.Fprintf(&record, "[%s] BOT: %s\n", ts, sanitize(e.Answer))
	fmt.Fprintf(&record, "[%s] MODEL: %s\n\n", ts, sanitize(e.Model))

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open interaction log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(record.String()); err != nil {
		return fmt.Errorf("failed to append to interaction log: %w", err)
	}

	l.logger.Debug("interaction logged", zap.String("query", e.Query))
	return nil
}

// Search returns the most recent log lines whose text matches the query or
// any of its tokens, capped at limit, oldest first.
func (l *Log) Search(query string, limit int) ([]string, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}

	tokens := searchTokens(query)

	var matched []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if matchesAny(line, tokens) {
			matched = append(matched, line)
		}
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

// searchTokens lowercases the query and keeps the full query plus tokens long
// enough to be meaningful on their own.
func searchTokens(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	tokens := []string{query}
	for _, tok := range strings.Fields(query) {
		if len(tok) >= 3 && tok != query {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func matchesAny(line string, tokens []string) bool {
	lower := strings.ToLower(line)
	for _, tok := range tokens {
		if tok != "" && strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// sanitize flattens newlines so one logical field stays on one log line.
func sanitize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}
