package tui

import "github.com/charmbracelet/lipgloss"

var (
	docStyle     = lipgloss.NewStyle().Margin(docStyleMarginVertical, docStyleMarginHorizontal)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Width(labelWidth)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
)
