package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"planner/internal/calendar"
	"planner/internal/config"
	"planner/internal/notes"
	"planner/internal/refresh"
	"planner/internal/storage"
	"planner/internal/task"
	"planner/internal/tracker"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
	modeMove
	modeNotes
	modeCalendar
)

// ClockMsg carries the time of a clock tick.
type ClockMsg time.Time

// DurationsMsg carries freshly formatted durations keyed by task id.
type DurationsMsg map[int]string

type Model struct {
	store    *storage.Store
	tracker  *tracker.Tracker
	notes    notes.Dir
	cfg      config.Config
	keys     keyMap
	help     help.Model
	now      func() time.Time
	snapshot *refresh.Snapshot
	interval time.Duration

	week  calendar.Week
	month calendar.Month

	tasks     []task.Task
	summary   [3][]task.Task
	tab       task.View
	durations map[int]string
	cursor    int
	mode      mode

	title      textinput.Model
	desc       textinput.Model
	focus      int
	editID     int
	editTitle  string
	pendingDel *task.Task
	moveOrig   []task.Task
	moveCursor int
	notesArea  textarea.Model
	notesID    int

	status string
	clock  string
	width  int
}

// New builds the model and loads the working set for today.
func New(store *storage.Store, cfg config.Config, snapshot *refresh.Snapshot, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	if snapshot == nil {
		snapshot = &refresh.Snapshot{}
	}
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 256
	title.Width = 40

	desc := textinput.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 1024
	desc.Width = 40

	area := textarea.New()
	area.Placeholder = "Notes..."
	area.SetWidth(70)
	area.SetHeight(10)

	m := Model{
		store:     store,
		tracker:   tracker.New(store, clockFunc(now)),
		notes:     notes.New(cfg.NotesDir),
		cfg:       cfg,
		keys:      newKeyMap(cfg.Keys),
		help:      help.New(),
		now:       now,
		snapshot:  snapshot,
		interval:  cfg.Refresh(),
		week:      calendar.NewWeek(now()),
		tab:       task.Upcoming,
		title:     title,
		desc:      desc,
		notesArea: area,
		status:    "Ready.",
		clock:     now().Format(task.ClockLayout),
	}
	m.reload()
	return m
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// Run drives the program until quit. The clock and duration ticks are tea
// commands that never touch the store, so the caller can close it as soon as
// Run returns.
func Run(store *storage.Store, cfg config.Config) error {
	m := New(store, cfg, &refresh.Snapshot{}, time.Now)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

const (
	clockTick     = "clock"
	durationsTick = "durations"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickClock(), m.tickDurations())
}

func (m Model) tickClock() tea.Cmd {
	return refresh.Tick(clockTick, m.interval, func(now time.Time) tea.Msg {
		return ClockMsg(now)
	})
}

// tickDurations recomputes from the snapshot current when the tick fires.
func (m Model) tickDurations() tea.Cmd {
	snapshot := m.snapshot
	return refresh.Tick(durationsTick, m.interval, func(now time.Time) tea.Msg {
		return DurationsMsg(refresh.Durations(snapshot.Load(), now))
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClockMsg:
		m.clock = time.Time(msg).Format(task.ClockLayout)
		return m, m.tickClock()
	case DurationsMsg:
		m.durations = msg
		return m, m.tickDurations()
	case refresh.Missed:
		if msg.Name == clockTick {
			return m, m.tickClock()
		}
		return m, m.tickDurations()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.title.Width = max(20, msg.Width-20)
		m.desc.Width = max(20, msg.Width-20)
		m.notesArea.SetWidth(max(20, msg.Width-4))
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd, modeEdit:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		case modeMove:
			return m.updateMove(msg)
		case modeNotes:
			return m.updateNotes(msg)
		case modeCalendar:
			return m.updateCalendar(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		if len(m.tasks) > 0 {
			m.cursor = clampCursor(m.cursor+1, len(m.tasks))
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case key.Matches(msg, m.keys.PrevDay):
		m.selectWeek(m.week.Shift(-1))
	case key.Matches(msg, m.keys.NextDay):
		m.selectWeek(m.week.Shift(1))
	case key.Matches(msg, m.keys.PrevWeek):
		idx := max(m.week.SelectedIndex(), 0)
		m.selectWeek(m.week.Prev().Select(idx))
	case key.Matches(msg, m.keys.NextWeek):
		idx := max(m.week.SelectedIndex(), 0)
		m.selectWeek(m.week.Next().Select(idx))
	case key.Matches(msg, m.keys.Today):
		m.selectWeek(calendar.NewWeek(m.now()))
	case key.Matches(msg, m.keys.Calendar):
		m.month = calendar.NewMonth(m.week.Selected)
		m.mode = modeCalendar
		m.status = "Pick a day: arrows/hjkl move, [ ] month, enter select, esc cancel"
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % 3
	case key.Matches(msg, m.keys.Add):
		return m.startForm(modeAdd, task.Task{})
	case isDayKey(msg.String()):
		m.selectWeek(m.week.Select(int(msg.String()[0] - '1')))
	case len(m.tasks) == 0:
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		t := m.tasks[m.cursor]
		if err := m.store.SetStatus(ctx, t.ID, t.Status.Toggle()); err != nil {
			m.fail("status update failed", err)
			return m, nil
		}
		m.reload()
		m.status = fmt.Sprintf("Marked %q as %s", t.Title, strings.ToLower(string(t.Status.Toggle())))
	case key.Matches(msg, m.keys.Start):
		t := m.tasks[m.cursor]
		err := m.tracker.Start(ctx, t.ID)
		switch {
		case errors.Is(err, tracker.ErrAlreadyRunning):
			m.status = "Timer is already running for this task."
		case err != nil:
			m.fail("start timer failed", err)
		default:
			m.reload()
			m.status = fmt.Sprintf("Timer started for %q", t.Title)
		}
	case key.Matches(msg, m.keys.Stop):
		t := m.tasks[m.cursor]
		elapsed, err := m.tracker.Stop(ctx, t.ID)
		switch {
		case errors.Is(err, tracker.ErrNotRunning):
			m.status = "No running timer for this task."
		case err != nil:
			m.fail("stop timer failed", err)
		default:
			m.reload()
			m.status = fmt.Sprintf("Timer stopped for %q (+%s)", t.Title, task.FormatDuration(elapsed))
		}
	case key.Matches(msg, m.keys.Edit):
		return m.startForm(modeEdit, m.tasks[m.cursor])
	case key.Matches(msg, m.keys.Delete):
		t := m.tasks[m.cursor]
		m.pendingDel = &t
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete %q? y/n", t.Title)
	case key.Matches(msg, m.keys.Notes):
		return m.openNotes(m.tasks[m.cursor])
	case key.Matches(msg, m.keys.Move):
		m.moveOrig = m.tasks
		m.moveCursor = m.cursor
		m.tasks = append([]task.Task(nil), m.tasks...)
		m.mode = modeMove
		m.status = "Move mode: up/down to move, enter to drop, esc to cancel"
	}
	return m, nil
}

// isDayKey matches 1-7, picking a weekday of the visible week.
func isDayKey(s string) bool {
	return len(s) == 1 && s[0] >= '1' && s[0] <= '7'
}

func (m *Model) selectWeek(w calendar.Week) {
	m.week = w
	m.cursor = 0
	m.reload()
}

func (m Model) startForm(md mode, t task.Task) (tea.Model, tea.Cmd) {
	m.mode = md
	m.focus = 0
	m.editID = t.ID
	m.editTitle = t.Title
	m.title.SetValue(t.Title)
	m.desc.SetValue(t.Description)
	m.desc.Blur()
	if md == modeAdd {
		m.status = fmt.Sprintf("New task for %s: enter title, tab/enter for description, enter to save, esc to cancel",
			task.FormatPretty(m.week.Selected))
	} else {
		m.status = "Edit task: tab switches field, enter saves, esc cancels"
	}
	return m, m.title.Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case msg.String() == "tab" || msg.String() == "shift+tab":
		return m.switchField()
	case key.Matches(msg, m.keys.Confirm):
		if m.focus == 0 {
			return m.switchField()
		}
		return m.saveForm()
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m Model) switchField() (tea.Model, tea.Cmd) {
	if m.focus == 0 {
		m.focus = 1
		m.title.Blur()
		return m, m.desc.Focus()
	}
	m.focus = 0
	m.desc.Blur()
	return m, m.title.Focus()
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	ctx := context.Background()
	title := strings.TrimSpace(m.title.Value())
	desc := strings.TrimSpace(m.desc.Value())

	if m.mode == modeAdd {
		if title == "" {
			m.status = "Task title cannot be empty."
			m.focus = 0
			m.desc.Blur()
			return m, m.title.Focus()
		}
		id, err := m.store.AddTask(ctx, title, desc, m.week.Selected)
		if err != nil {
			m.fail("save failed", err)
			return m, nil
		}
		m.closeForm()
		m.reload()
		m.cursor = m.indexOf(id)
		m.status = "Added task"
		return m, nil
	}

	if title == "" {
		title = m.editTitle
	}
	if err := m.store.UpdateTitleDesc(ctx, m.editID, title, desc); err != nil {
		m.fail("save failed", err)
		return m, nil
	}
	id := m.editID
	m.closeForm()
	m.reload()
	m.cursor = m.indexOf(id)
	m.status = "Task updated"
	return m, nil
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.title.SetValue("")
	m.desc.SetValue("")
	m.title.Blur()
	m.desc.Blur()
	m.editID = 0
	m.editTitle = ""
}

func (m Model) updateDeleteConfirm(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.mode = modeList
			return m, nil
		}
		if err := m.store.DeleteTask(context.Background(), m.pendingDel.ID); err != nil {
			m.fail("delete failed", err)
		} else {
			m.reload()
			m.status = fmt.Sprintf("Deleted %q", m.pendingDel.Title)
		}
	case "n", "N", "esc":
		m.status = "Delete cancelled"
	default:
		return m, nil
	}
	m.mode = modeList
	m.pendingDel = nil
	return m, nil
}

// updateMove reorders rows in memory only; the store sees one Reorder on drop.
func (m Model) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.tasks = m.moveOrig
		m.moveOrig = nil
		m.cursor = clampCursor(m.moveCursor, len(m.tasks))
		m.mode = modeList
		m.status = "Move cancelled"
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.tasks[m.cursor], m.tasks[m.cursor-1] = m.tasks[m.cursor-1], m.tasks[m.cursor]
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.tasks[m.cursor], m.tasks[m.cursor+1] = m.tasks[m.cursor+1], m.tasks[m.cursor]
			m.cursor++
		}
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.Move):
		ids := make([]int, len(m.tasks))
		for i, t := range m.tasks {
			ids[i] = t.ID
		}
		m.mode = modeList
		m.moveOrig = nil
		if err := m.store.Reorder(context.Background(), m.week.Selected, ids); err != nil {
			m.fail("reorder failed", err)
		} else {
			m.status = "Order saved"
		}
		cur := m.tasks[m.cursor].ID
		m.reload()
		m.cursor = m.indexOf(cur)
	}
	return m, nil
}

func (m Model) openNotes(t task.Task) (tea.Model, tea.Cmd) {
	content, err := m.notes.Read(t.ID)
	if err != nil {
		m.fail("open notes failed", err)
		return m, nil
	}
	m.notesID = t.ID
	m.notesArea.SetValue(content)
	m.mode = modeNotes
	m.status = fmt.Sprintf("Notes for %q: %s saves, %s saves and closes", t.Title, m.cfg.Keys.Save, m.cfg.Keys.Cancel)
	return m, m.notesArea.Focus()
}

func (m Model) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		if err := m.notes.Write(m.notesID, m.notesArea.Value()); err != nil {
			m.fail("save notes failed", err)
		} else {
			m.status = "Notes saved"
		}
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		if err := m.notes.Write(m.notesID, m.notesArea.Value()); err != nil {
			m.fail("save notes failed", err)
		} else {
			m.status = "Notes saved"
		}
		m.notesArea.Blur()
		m.notesArea.Reset()
		m.notesID = 0
		m.mode = modeList
		return m, nil
	}
	var cmd tea.Cmd
	m.notesArea, cmd = m.notesArea.Update(msg)
	return m, cmd
}

func (m Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeList
		m.status = "Calendar closed"
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeList
		m.selectWeek(calendar.NewWeek(m.month.Cursor))
		m.status = "Selected " + task.FormatPretty(m.week.Selected)
	case key.Matches(msg, m.keys.PrevDay):
		m.month = m.month.Move(-1)
	case key.Matches(msg, m.keys.NextDay):
		m.month = m.month.Move(1)
	case key.Matches(msg, m.keys.Up):
		m.month = m.month.Move(-7)
	case key.Matches(msg, m.keys.Down):
		m.month = m.month.Move(7)
	case key.Matches(msg, m.keys.PrevWeek):
		m.month = m.month.PrevMonth()
	case key.Matches(msg, m.keys.NextWeek):
		m.month = m.month.NextMonth()
	}
	return m, nil
}

// reload queries the day list and summary views, then publishes them as the
// snapshot the duration tick reads.
func (m *Model) reload() {
	ctx := context.Background()
	today := task.DateOf(m.now())

	tasks, err := m.store.TasksByDate(ctx, m.week.Selected)
	if err != nil {
		m.fail("reload failed", err)
		return
	}
	upcoming, err := m.store.Upcoming(ctx, today)
	if err != nil {
		m.fail("reload failed", err)
		return
	}
	overdue, err := m.store.Overdue(ctx, today)
	if err != nil {
		m.fail("reload failed", err)
		return
	}
	completed, err := m.store.Completed(ctx)
	if err != nil {
		m.fail("reload failed", err)
		return
	}

	m.tasks = tasks
	m.summary[task.Upcoming] = upcoming
	m.summary[task.Overdue] = overdue
	m.summary[task.Completed] = completed
	m.cursor = clampCursor(m.cursor, len(m.tasks))

	working := make([]task.Task, 0, len(tasks)+len(upcoming)+len(overdue)+len(completed))
	working = append(working, tasks...)
	working = append(working, upcoming...)
	working = append(working, overdue...)
	working = append(working, completed...)
	m.snapshot.Replace(working)
	m.durations = refresh.Durations(working, m.now())
}

func (m *Model) fail(what string, err error) {
	log.Printf("[ui] %s: %v", what, err)
	m.status = fmt.Sprintf("%s: %v", what, err)
}

func (m Model) indexOf(id int) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return clampCursor(m.cursor, len(m.tasks))
}

func (m Model) duration(t task.Task) string {
	if d, ok := m.durations[t.ID]; ok {
		return d
	}
	return task.FormatDuration(task.DisplaySeconds(t, m.now()))
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
