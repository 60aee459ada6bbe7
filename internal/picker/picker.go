// Package picker implements the interactive model selection menu. It only
// ever returns a fully resolved choice; persisting that choice is the
// caller's job, so an interrupt mid-menu can never leave a partial config
// write behind.
package picker

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Choice is the outcome of a completed menu session.
type Choice struct {
	// Model is the selected model name. Empty when the menu was cancelled or
	// ResetDefault is set.
	Model string

	// ResetDefault is set when the user chose to go back to the compiled-in
	// default model.
	ResetDefault bool

	// Cancelled is set when the user left the menu without choosing.
	Cancelled bool
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	favoriteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type model struct {
	models    []string
	favorites []string
	current   string
	cursor    int
	choice    Choice
	done      bool
}

// Run shows the menu over the given model names and blocks until the user
// selects, resets, or cancels. The first row always offers the reset-to-
// default option.
func Run(models []string, current string, favorites []string) (Choice, error) {
	m := model{
		models:    models,
		favorites: favorites,
		current:   current,
	}

	prog := tea.NewProgram(m)
	final, err := prog.Run()
	if err != nil {
		return Choice{}, fmt.Errorf("model selection failed: %w", err)
	}

	return final.(model).choice, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.choice = Choice{Cancelled: true}
			m.done = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.models) {
				m.cursor++
			}

		case "enter":
			if m.cursor == 0 {
				m.choice = Choice{ResetDefault: true}
			} else {
				m.choice = Choice{Model: m.models[m.cursor-1]}
			}
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.done {
		return ""
	}

	s := titleStyle.Render("Select a model") + "\n\n"

	rows := append([]string{"reset to default (tinyllama:latest)"}, m.models...)
	for i, row := range rows {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}

		label := row
		if i > 0 {
			if slices.Contains(m.favorites, row) {
				label = favoriteStyle.Render("* ") + label
			} else {
				label = "  " + label
			}
			if row == m.current {
				label += currentStyle.Render("  (current)")
			}
		}

		s += cursor + label + "\n"
	}

	s += "\n" + helpStyle.Render("up/down to move, enter to select, q to cancel") + "\n"
	return s
}
