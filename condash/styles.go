// ABOUTME: lipgloss style table for the dashboard, grounded on
// ABOUTME: tui/styles.go's panel-border/status-color convention.
package condash

import "github.com/charmbracelet/lipgloss"

var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	IdleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	BusyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)
