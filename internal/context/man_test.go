package context

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleManPage = `LS(1)                            User Commands                           LS(1)

NAME
       ls - list directory contents

SYNOPSIS
       ls [OPTION]... [FILE]...

DESCRIPTION
       List information about the FILEs (the current directory by default).

SEE ALSO
       dircolors(1)
`

func TestExtractSections(t *testing.T) {
	t.Run("keeps only NAME and SYNOPSIS", func(t *testing.T) {
		got := extractSections(sampleManPage, "NAME", "SYNOPSIS")
		assert.Contains(t, got, "ls - list directory contents")
		assert.Contains(t, got, "ls [OPTION]... [FILE]...")
		assert.NotContains(t, got, "List information")
		assert.NotContains(t, got, "dircolors")
	})

	t.Run("no wanted sections yields empty", func(t *testing.T) {
		assert.Empty(t, extractSections("plain text\nwith no headers\n", "NAME", "SYNOPSIS"))
	})
}

func TestIsSectionHeader(t *testing.T) {
	assert.True(t, isSectionHeader("NAME"))
	assert.True(t, isSectionHeader("SEE ALSO"))
	assert.False(t, isSectionHeader("       ls - list directory contents"))
	assert.False(t, isSectionHeader("Name"))
	assert.False(t, isSectionHeader(""))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 700)
	assert.Len(t, truncate(long, 600), 600)
	assert.Equal(t, "short", truncate("short", 600))
}
