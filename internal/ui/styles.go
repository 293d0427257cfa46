package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	rangeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))

	dayStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	selectedDayStyle = dayStyle.
				BorderForeground(lipgloss.Color("39")).
				Foreground(lipgloss.Color("39")).
				Bold(true)
	todayMark = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Strikethrough(true)
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	movingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("250"))
	activeTabStyle = tabStyle.Foreground(lipgloss.Color("39")).Bold(true).Underline(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	clockStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)
