package ui

import "github.com/charmbracelet/lipgloss"

var (
	// TitleStyle uses ANSI 6 (Cyan), readable on both dark and light terminals
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	// UsageStyle ANSI 2 (Green) for arguments and usage lines
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle ANSI 8 (Bright Black / Gray) for secondary text
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// FlagStyle ANSI 3 (Yellow) for flags
	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// AssistantStyle for the advisor's replies
	AssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	// PolicyNameStyle highlights policy names in result lists
	PolicyNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

	// CitationStyle for grounded quotes from policy documents
	CitationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)

	// WarnStyle for degraded-mode notices
	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
