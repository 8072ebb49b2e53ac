// Package viewer provides a terminal browser for reading archived
// channels. It is strictly read-only: logs are parsed with the same
// format the writer produces, and nothing on disk is modified.
package viewer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"dcbackup/pkg/archive"
)

// Run opens the browser over the given archive layout and blocks
// until the user quits.
func Run(layout *archive.Layout) error {
	model, err := NewModel(layout)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer error: %w", err)
	}
	return nil
}
