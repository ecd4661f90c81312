package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pengelbrecht/apptree/internal/tree"
)

// Run shows store in the alternate screen until the user quits.
func Run(store *tree.Store, cfg Config, opts ...tea.ProgramOption) error {
	m, err := New(store, cfg)
	if err != nil {
		return fmt.Errorf("start menu: %w", err)
	}

	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}

// PickMenu lets the user choose one of files. It returns "" if the user
// quit without choosing.
func PickMenu(files []MenuFile, opts ...tea.ProgramOption) (string, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(NewPicker(files), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("run picker: %w", err)
	}
	if p, ok := final.(Picker); ok && p.Selected() != nil {
		return p.Selected().Path, nil
	}
	return "", nil
}
