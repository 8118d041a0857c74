package ui

import "github.com/charmbracelet/lipgloss"

// ANSI base colours so the output reads on light and dark terminals alike.
var (
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle is dimmed grey for secondary text.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	// UserStyle and AssistantStyle colour chat entries by speaker.
	UserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	AssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

// RoleStyle returns the style for a chat role.
func RoleStyle(role string) lipgloss.Style {
	if role == "user" {
		return UserStyle
	}
	return AssistantStyle
}
