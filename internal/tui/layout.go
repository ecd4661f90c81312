package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor   = lipgloss.Color("205") // Pink
	secondaryColor = lipgloss.Color("86")  // Cyan
	mutedColor     = lipgloss.Color("241") // Gray
	successColor   = lipgloss.Color("78")  // Green
	errorColor     = lipgloss.Color("196") // Red
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondaryColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(successColor)

	legendStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	descStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	helpOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor).
				Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			Width(12)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// cursorPrefix marks the row under the cursor in engine output.
const cursorPrefix = " -> "

// renderFrame styles the engine's lines by position: title second, info
// third from last, legend last.
func (m Model) renderFrame() string {
	n := len(m.lines)
	styled := make([]string, 0, n+2)
	for i, line := range m.lines {
		switch {
		case i == 1:
			line = titleStyle.Render(line)
		case strings.HasPrefix(line, cursorPrefix):
			line = cursorStyle.Render(line)
		case i == n-3:
			line = infoStyle.Render(line)
		case i == n-1:
			line = legendStyle.Render(line)
		}
		styled = append(styled, line)
	}

	if s := m.statusLine(); s != "" {
		styled = append(styled, s)
	}
	styled = append(styled, m.renderFooter())

	view := lipgloss.JoinVertical(lipgloss.Left, styled...)
	if m.width > 0 {
		view = lipgloss.NewStyle().MaxWidth(m.width).Render(view)
	}
	return view
}

func (m Model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render("error: " + m.err.Error())
	}
	msg := m.message
	if msg == "" && m.status != nil {
		msg = m.status()
	}
	if msg == "" {
		return ""
	}
	return statusStyle.Render(msg)
}

// renderFooter renders the footer with keybindings.
func (m Model) renderFooter() string {
	return footerStyle.Render(m.help.View(m.keys))
}

// renderHelpOverlay renders a help overlay on top of the main view.
func (m Model) renderHelpOverlay(background string) string {
	title := helpTitleStyle.Render("Keyboard Shortcuts")

	var lines []string
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, helpKeyStyle.Render(h.Key)+helpDescStyle.Render(h.Desc))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	help := helpOverlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))

	// Center the overlay
	x := (m.width - lipgloss.Width(help)) / 2
	y := (m.height - lipgloss.Height(help)) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	return placeOverlay(x, y, help, background)
}

// placeOverlay places a foreground string on top of a background at the given position.
func placeOverlay(x, y int, fg, bg string) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	for len(bgLines) < y+len(fgLines) {
		bgLines = append(bgLines, "")
	}

	for i, fgLine := range fgLines {
		bgLine := bgLines[y+i]
		for lipgloss.Width(bgLine) < x {
			bgLine += " "
		}

		before := truncateWidth(bgLine, x)
		after := ""
		if lipgloss.Width(bgLine) > x+lipgloss.Width(fgLine) {
			after = substringFromWidth(bgLine, x+lipgloss.Width(fgLine))
		}
		bgLines[y+i] = before + fgLine + after
	}

	return strings.Join(bgLines, "\n")
}

func truncateWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if width+rw > w {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String()
}

func substringFromWidth(s string, w int) string {
	width := 0
	for i, r := range s {
		if width >= w {
			return s[i:]
		}
		width += lipgloss.Width(string(r))
	}
	return ""
}
