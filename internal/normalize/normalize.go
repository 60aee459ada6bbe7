// Package normalize turns free-form model output into exactly one runnable
// command, or declares that none could be extracted. The model is only
// steered through the prompt contract, never constrained at decode time, so
// this is where contract violations are caught instead of printed.
package normalize

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Result is the outcome of normalizing raw model output.
type Result struct {
	// Command is the single extracted command line. Empty when Found is false.
	Command string

	// Found reports whether exactly one command could be extracted.
	Found bool
}

// NoCommand is the result for output from which no single command could be
// extracted.
var NoCommand = Result{}

// Normalize extracts exactly one command line from raw model output.
//
// Markdown fences are unwrapped, comment and prose lines are discarded, and
// every surviving line must parse as shell. If more than one command-looking
// line survives, the model broke the single-command contract and the whole
// output is rejected rather than repaired by guessing which line to run.
func Normalize(raw string) Result {
	text := strings.TrimSpace(raw)
	if text == "" {
		return NoCommand
	}

	if fenced, ok := extractFence(text); ok {
		text = fenced
	}

	var candidates []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// Unwrap inline code spans like `ls -la`, but leave backtick
		// substitution inside a command alone.
		if len(line) > 1 && strings.HasPrefix(line, "`") && strings.HasSuffix(line, "`") {
			line = strings.TrimSpace(strings.Trim(line, "`"))
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if isProse(line) {
			continue
		}
		if !parsesAsShell(line) {
			continue
		}
		candidates = append(candidates, line)
	}

	if len(candidates) != 1 {
		return NoCommand
	}
	return Result{Command: candidates[0], Found: true}
}

// extractFence returns the content of the first fenced code block, when one
// exists. A language tag on the opening fence is dropped. An unterminated
// fence yields everything after it.
func extractFence(text string) (string, bool) {
	open := strings.Index(text, "```")
	if open < 0 {
		return "", false
	}

	rest := text[open+3:]

	// Drop the language tag (e.g. ```bash) through the end of the line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && isLangTag(rest[:nl]) {
		rest = rest[nl+1:]
	}

	if close := strings.Index(rest, "```"); close >= 0 {
		rest = rest[:close]
	}

	return strings.TrimSpace(rest), true
}

// isLangTag reports whether s looks like a fence language tag rather than
// command content sharing the opening fence's line.
func isLangTag(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return !strings.ContainsAny(s, " \t|&;<>$")
}

// shellTokens are characters that mark a line as shell rather than prose.
const shellTokens = "|&;<>$-/\\=*~`\"'()[]{}"

// isProse reports whether a line reads as natural language: it carries no
// shell-meaningful tokens and ends with sentence punctuation (or a lead-in
// colon like "Here is the command:").
func isProse(line string) bool {
	if strings.ContainsAny(line, shellTokens) {
		return false
	}
	return strings.HasSuffix(line, ".") ||
		strings.HasSuffix(line, "!") ||
		strings.HasSuffix(line, "?") ||
		strings.HasSuffix(line, ":") ||
		strings.HasSuffix(line, ",")
}

// parsesAsShell reports whether the line is syntactically valid shell.
func parsesAsShell(line string) bool {
	_, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	return err == nil
}
