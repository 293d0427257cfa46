package calendar

import (
	"fmt"
	"time"

	"planner/internal/task"
)

// Month is the state of the month picker.
type Month struct {
	Year   int
	Month  time.Month
	Cursor time.Time
}

func NewMonth(d time.Time) Month {
	d = task.DateOf(d)
	return Month{Year: d.Year(), Month: d.Month(), Cursor: d}
}

func (m Month) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

func (m Month) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Grid returns Monday-first weeks covering the month, padded with days of
// the neighbouring months.
func (m Month) Grid() [][7]time.Time {
	first := m.first()
	last := first.AddDate(0, 1, -1)
	var weeks [][7]time.Time
	for start := WeekStart(first); !start.After(last); start = start.AddDate(0, 0, 7) {
		weeks = append(weeks, WeekDays(start))
	}
	return weeks
}

func (m Month) InMonth(d time.Time) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

func (m Month) PrevMonth() Month {
	return m.withFirst(m.first().AddDate(0, -1, 0))
}

func (m Month) NextMonth() Month {
	return m.withFirst(m.first().AddDate(0, 1, 0))
}

// withFirst moves to the month of first, keeping the cursor's day of month
// where that month has it.
func (m Month) withFirst(first time.Time) Month {
	day := m.Cursor.Day()
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return Month{
		Year:   first.Year(),
		Month:  first.Month(),
		Cursor: time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC),
	}
}

// Move shifts the cursor by n days, following it into other months.
func (m Month) Move(n int) Month {
	return NewMonth(m.Cursor.AddDate(0, 0, n))
}
