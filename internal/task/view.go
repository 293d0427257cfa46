package task

import "time"

type View int

const (
	Upcoming View = iota
	Overdue
	Completed
)

func (v View) String() string {
	switch v {
	case Upcoming:
		return "To-do"
	case Overdue:
		return "Overdue"
	case Completed:
		return "Completed"
	default:
		return "unknown"
	}
}

// Classify places a task in exactly one summary view relative to ref.
func Classify(t Task, ref time.Time) View {
	if t.Status == Done {
		return Completed
	}
	if DateOf(t.Date).Before(DateOf(ref)) {
		return Overdue
	}
	return Upcoming
}

type Views struct {
	Upcoming  []Task
	Overdue   []Task
	Completed []Task
}

// Partition splits tasks into the three views, keeping input order inside
// each bucket.
func Partition(tasks []Task, ref time.Time) Views {
	var v Views
	for _, t := range tasks {
		switch Classify(t, ref) {
		case Completed:
			v.Completed = append(v.Completed, t)
		case Overdue:
			v.Overdue = append(v.Overdue, t)
		default:
			v.Upcoming = append(v.Upcoming, t)
		}
	}
	return v
}
