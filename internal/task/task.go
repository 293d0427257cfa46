package task

import (
	"database/sql"
	"strings"
	"time"
)

const (
	DateLayout   = "2006-01-02"
	prettyLayout = "02.01.2006"
	ClockLayout  = "02.01.2006 15:04:05"
)

type Status string

const (
	NotDone Status = "Not done"
	Done    Status = "Done"
)

// legacyDone is the done token written by older builds; its not-done
// counterpart "Yapılmadı" falls through to NotDone.
const legacyDone = "Yapıldı"

// ParseStatus maps current and legacy status tokens onto the two-value
// domain. Matching ignores case, surrounding space and '-'/'_' separators.
// Unknown tokens read as NotDone.
func ParseStatus(v string) Status {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(v)))
	switch strings.Join(strings.Fields(norm), " ") {
	case "done", "completed", strings.ToLower(legacyDone):
		return Done
	default:
		return NotDone
	}
}

func (s Status) Toggle() Status {
	if s == Done {
		return NotDone
	}
	return Done
}

type Task struct {
	ID               int
	Title            string
	Description      string
	Date             time.Time
	Status           Status
	TotalSeconds     int
	ActiveTimerStart sql.NullString
	SortOrder        int
}

// Running reports whether a timer is open for the task.
func (t Task) Running() bool {
	return t.ActiveTimerStart.Valid && strings.TrimSpace(t.ActiveTimerStart.String) != ""
}

func ParseDate(v string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(v))
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// DateOf drops the clock part of t, keeping its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatPretty renders a date as "02.01.2006 Monday".
func FormatPretty(d time.Time) string {
	return d.Format(prettyLayout) + " " + d.Weekday().String()
}
