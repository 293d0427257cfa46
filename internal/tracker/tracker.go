// Package tracker drives the per-task timer: Idle until started, Running
// until stopped, with elapsed time folded into the stored total on stop.
package tracker

import (
	"context"
	"errors"
	"time"

	"planner/internal/task"
)

var (
	ErrAlreadyRunning = errors.New("timer is already running for this task")
	ErrNotRunning     = errors.New("no running timer for this task")
)

// Store is the slice of the task store the tracker writes to.
type Store interface {
	Task(ctx context.Context, id int) (task.Task, error)
	SetTimerStart(ctx context.Context, id int, start *time.Time) error
	CommitTimer(ctx context.Context, id, total int) error
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type Tracker struct {
	store Store
	clock Clock
}

func New(store Store, clock Clock) *Tracker {
	if clock == nil {
		clock = RealClock{}
	}
	return &Tracker{store: store, clock: clock}
}

// Start opens a timer. A running timer keeps its original start.
func (t *Tracker) Start(ctx context.Context, id int) error {
	cur, err := t.store.Task(ctx, id)
	if err != nil {
		return err
	}
	if cur.Running() {
		return ErrAlreadyRunning
	}
	now := t.clock.Now()
	return t.store.SetTimerStart(ctx, id, &now)
}

// Stop closes the timer and returns the seconds it added to the total.
func (t *Tracker) Stop(ctx context.Context, id int) (int, error) {
	cur, err := t.store.Task(ctx, id)
	if err != nil {
		return 0, err
	}
	if !cur.Running() {
		return 0, ErrNotRunning
	}
	elapsed := 0
	if start, err := task.ParseTimestamp(cur.ActiveTimerStart.String); err == nil {
		elapsed = task.Elapsed(start, t.clock.Now())
	}
	if err := t.store.CommitTimer(ctx, id, cur.TotalSeconds+elapsed); err != nil {
		return 0, err
	}
	return elapsed, nil
}
