// Package prompt builds the instruction payload sent to the model. The system
// instruction pins the output contract — exactly one shell command, nothing
// else — which is what the normalizer validates after the fact.
package prompt

import (
	"fmt"
	"strings"

	mimirctx "github.com/mimirsh/mimir/internal/context"
)

// SystemInstruction fixes the output contract. It is deliberately constant
// across runs and never touched by context injection, so the normalizer's
// assumptions about model output keep holding.
const SystemInstruction = `Reply with ONLY the shell command. Nothing else.
Examples:
User: show running processes
You: ps aux

User: check disk space
You: df -h

User: find large files
You: find / -size +100M 2>/dev/null

NO explanations. NO text. ONLY the command.`

// Build produces the user prompt for a query: the labeled context sections in
// their fixed order, each omitted entirely when empty, followed by the
// literal query. Pure function of its inputs.
func Build(query string, bundle mimirctx.Bundle) string {
	var b strings.Builder

	for _, section := range bundle.Sections {
		text := strings.TrimSpace(section.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "<%s>\n%s\n</%s>\n\n", section.Name, text, section.Name)
	}

	b.WriteString(query)
	return b.String()
}
