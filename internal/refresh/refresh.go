// Package refresh runs the once-a-second background activities that repaint
// live values. Ticks only read a snapshot of already-fetched tasks and never
// touch the store.
package refresh

import (
	"log"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"planner/internal/task"
)

// Snapshot holds the working set of the view on screen. The slice passed to
// Replace must not be mutated afterwards.
type Snapshot struct {
	tasks atomic.Pointer[[]task.Task]
}

func (s *Snapshot) Replace(tasks []task.Task) {
	s.tasks.Store(&tasks)
}

func (s *Snapshot) Load() []task.Task {
	p := s.tasks.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Durations formats the live duration of every task in tasks, keyed by id.
func Durations(tasks []task.Task, now time.Time) map[int]string {
	out := make(map[int]string, len(tasks))
	for _, t := range tasks {
		out[t.ID] = task.FormatDuration(task.DisplaySeconds(t, now))
	}
	return out
}

// Missed stands in for the message of a tick whose callback panicked, so
// the receiver can re-arm the chain.
type Missed struct {
	Name string
	At   time.Time
}

// Tick fires fn once after interval via tea.Tick. The model re-arms it from
// Update when the resulting message arrives. A panic inside fn is logged and
// reported as Missed.
func Tick(name string, interval time.Duration, fn func(now time.Time) tea.Msg) tea.Cmd {
	if interval <= 0 {
		interval = time.Second
	}
	return tea.Tick(interval, func(now time.Time) (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[refresh] %s tick failed: %v", name, r)
				msg = Missed{Name: name, At: now}
			}
		}()
		return fn(now)
	})
}
