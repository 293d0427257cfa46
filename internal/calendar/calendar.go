package calendar

import (
	"time"

	"planner/internal/task"
)

var ShortDayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekStart returns the Monday of the week containing d.
func WeekStart(d time.Time) time.Time {
	d = task.DateOf(d)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func WeekDays(start time.Time) [7]time.Time {
	var days [7]time.Time
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// Week is the week bar state: the visible Monday and the selected day. The
// selected day may sit outside the visible week after paging.
type Week struct {
	Start    time.Time
	Selected time.Time
}

func NewWeek(d time.Time) Week {
	d = task.DateOf(d)
	return Week{Start: WeekStart(d), Selected: d}
}

func (w Week) Days() [7]time.Time {
	return WeekDays(w.Start)
}

func (w Week) Prev() Week {
	w.Start = w.Start.AddDate(0, 0, -7)
	return w
}

func (w Week) Next() Week {
	w.Start = w.Start.AddDate(0, 0, 7)
	return w
}

// Select picks the i-th day (0 = Monday) of the visible week.
func (w Week) Select(i int) Week {
	if i < 0 || i > 6 {
		return w
	}
	w.Selected = w.Start.AddDate(0, 0, i)
	return w
}

// Shift moves the selection by n days, paging the week when needed.
func (w Week) Shift(n int) Week {
	return NewWeek(w.Selected.AddDate(0, 0, n))
}

func (w Week) SelectedIndex() int {
	for i, d := range w.Days() {
		if d.Equal(w.Selected) {
			return i
		}
	}
	return -1
}

func (w Week) Label() string {
	end := w.Start.AddDate(0, 0, 6)
	return task.FormatPretty(w.Start) + "  -  " + task.FormatPretty(end)
}

// DayHeader renders "Mon 02.01".
func DayHeader(d time.Time) string {
	return ShortDayNames[(int(d.Weekday())+6)%7] + " " + d.Format("02.01")
}
