package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	mimirctx "github.com/mimirsh/mimir/internal/context"
)

func TestBuild(t *testing.T) {
	t.Run("empty bundle yields just the query", func(t *testing.T) {
		got := Build("show running processes", mimirctx.Bundle{})
		assert.Equal(t, "show running processes", got)
		assert.NotContains(t, got, "<")
	})

	t.Run("blank sections are omitted entirely", func(t *testing.T) {
		bundle := mimirctx.Bundle{Sections: []mimirctx.Section{
			{Name: "shell_history", Text: "   \n  "},
		}}
		got := Build("list files", bundle)
		assert.Equal(t, "list files", got)
		assert.NotContains(t, got, "shell_history")
	})

	t.Run("sections appear in bundle order, query last", func(t *testing.T) {
		bundle := mimirctx.Bundle{Sections: []mimirctx.Section{
			{Name: "shell_history", Text: "docker ps -a"},
			{Name: "previous_interactions", Text: "USER: docker"},
			{Name: "man_page", Text: "docker - container tool"},
		}}
		got := Build("docker", bundle)

		hist := strings.Index(got, "<shell_history>")
		logs := strings.Index(got, "<previous_interactions>")
		man := strings.Index(got, "<man_page>")
		assert.True(t, hist >= 0 && logs > hist && man > logs)
		assert.True(t, strings.HasSuffix(got, "docker"))
	})

	t.Run("history line appears verbatim", func(t *testing.T) {
		bundle := mimirctx.Bundle{Sections: []mimirctx.Section{
			{Name: "shell_history", Text: "docker ps -a"},
		}}
		got := Build("docker", bundle)
		assert.Contains(t, got, "docker ps -a")
	})
}

func TestSystemInstructionIsStable(t *testing.T) {
	// The normalizer relies on this contract; make drift deliberate.
	assert.Contains(t, SystemInstruction, "ONLY the shell command")
	assert.Contains(t, SystemInstruction, "NO explanations")
}
