package picker

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestPickerSelection(t *testing.T) {
	m := model{models: []string{"tinyllama:latest", "mistral:latest"}}

	t.Run("enter on first row resets to default", func(t *testing.T) {
		updated, _ := m.Update(key("enter"))
		choice := updated.(model).choice
		assert.True(t, choice.ResetDefault)
		assert.Empty(t, choice.Model)
	})

	t.Run("navigating down selects a model", func(t *testing.T) {
		step, _ := m.Update(key("down"))
		step, _ = step.Update(key("down"))
		step, _ = step.Update(key("enter"))

		choice := step.(model).choice
		assert.Equal(t, "mistral:latest", choice.Model)
		assert.False(t, choice.ResetDefault)
	})

	t.Run("cursor stays in bounds", func(t *testing.T) {
		step, _ := m.Update(key("up"))
		assert.Equal(t, 0, step.(model).cursor)

		for i := 0; i < 10; i++ {
			step, _ = step.Update(key("down"))
		}
		assert.Equal(t, 2, step.(model).cursor)
	})

	t.Run("esc cancels", func(t *testing.T) {
		updated, _ := m.Update(key("esc"))
		assert.True(t, updated.(model).choice.Cancelled)
	})
}

func TestPickerView(t *testing.T) {
	m := model{
		models:    []string{"tinyllama:latest", "mistral:latest"},
		favorites: []string{"mistral:latest"},
		current:   "tinyllama:latest",
	}

	view := m.View()
	assert.Contains(t, view, "reset to default")
	assert.Contains(t, view, "tinyllama:latest")
	assert.Contains(t, view, "(current)")
}
