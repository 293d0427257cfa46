package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"planner/internal/calendar"
	"planner/internal/task"
)

const (
	summaryRows = 8
	titleWidth  = 30
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Planner"))
	b.WriteString("  ")
	b.WriteString(rangeStyle.Render(m.week.Label()))
	b.WriteString("\n")
	b.WriteString(m.renderWeekBar())
	b.WriteString("\n")

	if m.mode == modeCalendar {
		b.WriteString(m.renderCalendar())
	} else {
		b.WriteString(fmt.Sprintf("Tasks for %s\n", task.FormatPretty(m.week.Selected)))
		b.WriteString(m.renderTaskList())
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAdd, modeEdit:
		b.WriteString(m.renderForm())
	case modeNotes:
		b.WriteString(panelStyle.Render(m.notesArea.View()))
	default:
		b.WriteString(m.renderSummary())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderWeekBar() string {
	today := task.DateOf(m.now())
	cells := make([]string, 0, 7)
	for i, d := range m.week.Days() {
		label := fmt.Sprintf("%d %s", i+1, calendar.DayHeader(d))
		if d.Equal(today) {
			label += todayMark.Render("*")
		}
		style := dayStyle
		if d.Equal(m.week.Selected) {
			style = selectedDayStyle
		}
		cells = append(cells, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) renderTaskList() string {
	if len(m.tasks) == 0 {
		return dimStyle.Render(fmt.Sprintf("No tasks for this day. Press '%s' to add one.", m.cfg.Keys.Add)) + "\n"
	}
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if i == m.cursor {
			cursor = cursorStyle.Render(">")
			if m.mode == modeMove {
				cursor = movingStyle.Render("≡")
			}
		}
		checkbox := "[ ]"
		if t.Status == task.Done {
			checkbox = "[x]"
		}
		// pad before styling so escape codes do not count toward the width
		title := fmt.Sprintf("%-*s", titleWidth, truncate(t.Title, titleWidth))
		if t.Status == task.Done {
			title = doneStyle.Render(title)
		}
		dur := m.duration(t)
		if t.Running() {
			dur = runningStyle.Render("▶ " + dur)
		}
		line := fmt.Sprintf("%s %s %s %-*s %-9s %s",
			cursor, checkbox, title, titleWidth, truncate(oneLine(t.Description), titleWidth), string(t.Status), dur)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSummary() string {
	tabs := make([]string, 0, 3)
	for _, v := range []task.View{task.Upcoming, task.Completed, task.Overdue} {
		label := fmt.Sprintf("%s (%d)", v, len(m.summary[v]))
		if v == m.tab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	list := m.summary[m.tab]
	if len(list) == 0 {
		b.WriteString(dimStyle.Render("  (empty)"))
		b.WriteString("\n")
		return b.String()
	}
	for i, t := range list {
		if i == summaryRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", len(list)-summaryRows)))
			b.WriteString("\n")
			break
		}
		b.WriteString(fmt.Sprintf("  %-40s %-22s %s\n", truncate(t.Title, 40), task.FormatPretty(t.Date), m.duration(t)))
	}
	return b.String()
}

func (m Model) renderForm() string {
	heading := "New task"
	if m.mode == modeEdit {
		heading = "Edit task"
	}
	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString("Title       : ")
	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString("Description : ")
	b.WriteString(m.desc.View())
	return panelStyle.Render(b.String()) + "\n"
}

func (m Model) renderCalendar() string {
	var b strings.Builder
	b.WriteString(m.month.Title())
	b.WriteString("\n")
	b.WriteString(strings.Join(calendar.ShortDayNames[:], " "))
	b.WriteString("\n")
	for _, week := range m.month.Grid() {
		cells := make([]string, 0, 7)
		for _, d := range week {
			cell := fmt.Sprintf("%3d", d.Day())
			switch {
			case d.Equal(m.month.Cursor):
				cell = cursorStyle.Reverse(true).Render(cell)
			case !m.month.InMonth(d):
				cell = dimStyle.Render(cell)
			case d.Equal(m.week.Selected):
				cell = activeTabStyle.Render(cell)
			}
			cells = append(cells, cell)
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return panelStyle.Render(b.String()) + "\n"
}

func (m Model) renderStatusBar() string {
	status := statusStyle.Render(m.status)
	clock := clockStyle.Render(m.clock)
	gap := m.width - lipgloss.Width(status) - lipgloss.Width(clock)
	if gap < 2 {
		gap = 2
	}
	return status + strings.Repeat(" ", gap) + clock
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
