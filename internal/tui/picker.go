package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pengelbrecht/apptree/internal/menufile"
)

// MenuFile describes a menu definition offered by the picker.
type MenuFile struct {
	Path   string
	Title  string
	Format menufile.Format
	Items  int // Number of top-level items
}

// FindMenus loads every .toml, .yaml and .yml menu in dir. Files that fail
// to parse are returned in errs and skipped.
func FindMenus(dir string) (files []MenuFile, errs []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{err}
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		format, err := menufile.FormatFor(path)
		if err != nil {
			continue
		}
		m, err := menufile.Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, MenuFile{Path: path, Title: m.Title, Format: format, Items: len(m.Items)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, errs
}

// menuItem implements list.Item for menu file display.
type menuItem struct {
	file MenuFile
}

func (i menuItem) Title() string {
	return i.file.Title
}

func (i menuItem) Description() string {
	return fmt.Sprintf("%s • %s • %d items", filepath.Base(i.file.Path), i.file.Format, i.file.Items)
}

func (i menuItem) FilterValue() string {
	return i.file.Title
}

// Picker is the menu file selection model.
type Picker struct {
	list     list.Model
	selected *MenuFile
	quitting bool
	width    int
	height   int
}

// Picker styles
var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				MarginBottom(1)

	pickerStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// NewPicker creates a new menu file picker.
func NewPicker(files []MenuFile) Picker {
	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = menuItem{file: f}
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 60, 20)
	l.Title = "Select a Menu"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = pickerTitleStyle

	return Picker{
		list: l,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			p.quitting = true
			return p, tea.Quit
		case "enter":
			if item, ok := p.list.SelectedItem().(menuItem); ok {
				p.selected = &item.file
				return p, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.list.SetSize(msg.Width-4, msg.Height-4)
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

// View implements tea.Model.
func (p Picker) View() string {
	if p.quitting && p.selected == nil {
		return "No menu selected.\n"
	}
	if p.selected != nil {
		return ""
	}
	return pickerStyle.Render(p.list.View())
}

// Selected returns the selected menu file, or nil if none was selected.
func (p Picker) Selected() *MenuFile {
	return p.selected
}

// IsQuitting returns true if the user quit without selecting.
func (p Picker) IsQuitting() bool {
	return p.quitting && p.selected == nil
}
