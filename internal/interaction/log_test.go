package interaction

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.log")
	log := NewLog(path, nil)

	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	require.NoError(t, log.Append(Entry{
		Timestamp: ts,
		Query:     "show running processes",
		Answer:    "ps aux",
		Model:     "tinyllama:latest",
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	expected := "[2026-03-14 09:26:53] USER: show running processes\n" +
		"[2026-03-14 09:26:53] BOT: ps aux\n" +
		"[2026-03-14 09:26:53] MODEL: tinyllama:latest\n\n"
	assert.Equal(t, expected, string(data))
}

func TestAppendNeverRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.log")
	log := NewLog(path, nil)

	require.NoError(t, log.Append(Entry{Query: "first", Answer: "ls", Model: "m"}))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, log.Append(Entry{Query: "second", Answer: "pwd", Model: "m"}))
	both, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, len(both) > len(first))
	assert.Equal(t, string(first), string(both[:len(first)]))
}

func TestAppendFlattensNewlines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.log")
	log := NewLog(path, nil)

	require.NoError(t, log.Append(Entry{Query: "a\nb", Answer: "c\nd", Model: "m"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "USER: a b\n")
	assert.Contains(t, string(data), "BOT: c d\n")
}

func TestSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interactions.log")
	log := NewLog(path, nil)

	require.NoError(t, log.Append(Entry{Query: "show docker containers", Answer: "docker ps -a", Model: "m"}))
	require.NoError(t, log.Append(Entry{Query: "current directory", Answer: "pwd", Model: "m"}))

	t.Run("full query match", func(t *testing.T) {
		lines, err := log.Search("docker", 10)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "show docker containers")
		assert.Contains(t, lines[1], "docker ps -a")
	})

	t.Run("token match", func(t *testing.T) {
		lines, err := log.Search("docker containers list", 10)
		require.NoError(t, err)
		assert.NotEmpty(t, lines)
	})

	t.Run("limit keeps the most recent lines", func(t *testing.T) {
		lines, err := log.Search("docker", 1)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "docker ps -a")
	})

	t.Run("missing file returns error", func(t *testing.T) {
		missing := NewLog(filepath.Join(t.TempDir(), "nope.log"), nil)
		_, err := missing.Search("docker", 10)
		assert.Error(t, err)
	})
}
