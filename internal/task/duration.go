package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errBadTimestamp = errors.New("unrecognised timestamp")

// naive layouts are what older builds stored; they carry no zone and are read
// as local time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// FormatTimestamp keeps sub-second precision so a session is measured from
// the actual start instant.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func ParseTimestamp(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errBadTimestamp
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errBadTimestamp, v)
}

// Elapsed is the whole seconds between start and now, never negative.
func Elapsed(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// DisplaySeconds is the committed total plus the live delta of an open timer.
// A start that cannot be parsed contributes nothing.
func DisplaySeconds(t Task, now time.Time) int {
	base := t.TotalSeconds
	if base < 0 {
		base = 0
	}
	if !t.Running() {
		return base
	}
	start, err := ParseTimestamp(t.ActiveTimerStart.String)
	if err != nil {
		return base
	}
	return base + Elapsed(start, now)
}

// FormatDuration renders seconds as HH:MM:SS. Hours are not wrapped at 24.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
