// Package ui holds terminal presentation helpers for the ideaspark command:
// styles, the task table, the interactive task form and due-date parsing.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	ColorPrimary = "#7C3AED" // violet, headings
	ColorSuccess = "#10B981" // green, done
	ColorAccent  = "#60A5FA" // blue, new
	ColorWarning = "#F59E0B" // amber, ideas
	ColorError   = "#EF4444" // red
	ColorMuted   = "#6B7280" // gray
	ColorBorder  = "#374151"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimary)).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorMuted))

	IdeaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder)).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimary)).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	statusNewStyle  = cellStyle.Foreground(lipgloss.Color(ColorAccent))
	statusDoneStyle = cellStyle.Foreground(lipgloss.Color(ColorSuccess))
	deletedStyle    = cellStyle.Foreground(lipgloss.Color(ColorMuted)).Strikethrough(true)
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
