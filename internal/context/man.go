package context

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode"
)

// DefaultManBudget caps the extracted man-page text. The NAME/SYNOPSIS-only
// rule and this budget are deliberate defaults, both tunable via config.
const DefaultManBudget = 600

const manTimeout = 3 * time.Second

// ManRetriever resolves the first query token to a man page and extracts only
// its NAME and SYNOPSIS sections.
type ManRetriever struct {
	budget int
}

// NewManRetriever creates a man-page retriever. If budget is 0 or negative,
// DefaultManBudget is used.
func NewManRetriever(budget int) *ManRetriever {
	if budget <= 0 {
		budget = DefaultManBudget
	}
	return &ManRetriever{budget: budget}
}

// Name returns the retriever name.
func (r *ManRetriever) Name() string {
	return "man_page"
}

// Retrieve runs `man <term>` for the first query token and returns the
// NAME and SYNOPSIS sections, truncated to the character budget.
func (r *ManRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "", nil
	}
	term := strings.TrimFunc(fields[0], func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})
	if term == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, manTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "man", term)
	cmd.Env = append(os.Environ(), "MANPAGER=cat", "MANWIDTH=80")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}

	summary := extractSections(string(out), "NAME", "SYNOPSIS")
	return truncate(summary, r.budget), nil
}

// extractSections pulls the bodies of the named man-page sections. Section
// headers are unindented all-caps lines in rendered man output.
func extractSections(page string, wanted ...string) string {
	want := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		want[w] = true
	}

	var out []string
	var current []string
	collecting := false

	flush := func() {
		if collecting && len(current) > 0 {
			out = append(out, strings.Join(current, "\n"))
		}
		current = nil
	}

	for _, line := range strings.Split(page, "\n") {
		if isSectionHeader(line) {
			flush()
			collecting = want[strings.TrimSpace(line)]
			continue
		}
		if collecting {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				current = append(current, trimmed)
			}
		}
	}
	flush()

	return strings.Join(out, "\n")
}

// isSectionHeader reports whether line is an unindented, all-uppercase
// section header like NAME or SEE ALSO.
func isSectionHeader(line string) bool {
	if line == "" || unicode.IsSpace(rune(line[0])) {
		return false
	}
	hasLetter := false
	for _, c := range line {
		if unicode.IsLetter(c) {
			hasLetter = true
			if !unicode.IsUpper(c) {
				return false
			}
		}
	}
	return hasLetter
}

func truncate(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}
