package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the wizard in the alternate screen and blocks until the user
// quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run wizard: %w", err)
	}
	return nil
}
