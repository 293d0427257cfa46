package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/task"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func day(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := task.ParseDate(v)
	require.NoError(t, err)
	return d
}

func ids(tasks []task.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, tk := range tasks {
		out = append(out, tk.ID)
	}
	return out
}

func titlesOf(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, tk := range tasks {
		out = append(out, tk.Title)
	}
	return out
}

func TestAddTask_PayRent(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	id, err := s.AddTask(ctx, "Pay rent", "", day(t, "2024-03-01"))
	require.NoError(t, err)

	got, err := s.TasksByDate(ctx, day(t, "2024-03-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "Pay rent", got[0].Title)
	assert.Equal(t, task.NotDone, got[0].Status)
	assert.Equal(t, 0, got[0].TotalSeconds)
	assert.Equal(t, 0, got[0].SortOrder)
	assert.False(t, got[0].Running())
}

func TestAddTask_RejectsEmptyTitle(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.AddTask(context.Background(), "   ", "desc", day(t, "2024-03-01"))
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestAddTask_OrderPerDay(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.AddTask(ctx, title, "", day(t, "2024-03-01"))
		require.NoError(t, err)
	}
	_, err := s.AddTask(ctx, "other day", "", day(t, "2024-03-02"))
	require.NoError(t, err)

	first, err := s.TasksByDate(ctx, day(t, "2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, []int{first[0].SortOrder, first[1].SortOrder, first[2].SortOrder})

	second, err := s.TasksByDate(ctx, day(t, "2024-03-02"))
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 0, second[0].SortOrder)
}

func TestTasksByDate_TieBreaksByID(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	d := day(t, "2024-03-01")

	a, _ := s.AddTask(ctx, "a", "", d)
	b, _ := s.AddTask(ctx, "b", "", d)
	require.NoError(t, s.SetOrder(ctx, a, 5))
	require.NoError(t, s.SetOrder(ctx, b, 5))

	got, err := s.TasksByDate(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []int{a, b}, ids(got))
}

func TestReorder(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	d := day(t, "2024-03-01")

	t1, _ := s.AddTask(ctx, "T1", "", d)
	t2, _ := s.AddTask(ctx, "T2", "", d)
	t3, _ := s.AddTask(ctx, "T3", "", d)

	require.NoError(t, s.Reorder(ctx, d, []int{t3, t1, t2}))

	got, err := s.TasksByDate(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []int{t3, t1, t2}, ids(got))
	assert.Equal(t, []int{0, 1, 2}, []int{got[0].SortOrder, got[1].SortOrder, got[2].SortOrder})
}

func TestReorder_LeavesOtherDaysAlone(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	d1, d2 := day(t, "2024-03-01"), day(t, "2024-03-02")

	a, _ := s.AddTask(ctx, "a", "", d1)
	other, _ := s.AddTask(ctx, "other", "", d2)
	b, _ := s.AddTask(ctx, "b", "", d1)

	require.NoError(t, s.Reorder(ctx, d1, []int{b, other, a}))

	got, err := s.Task(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SortOrder)

	first, err := s.TasksByDate(ctx, d1)
	require.NoError(t, err)
	assert.Equal(t, []int{b, a}, ids(first))
}

func TestSummaryViews(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	ref := day(t, "2024-06-01")

	old, _ := s.AddTask(ctx, "old", "", day(t, "2024-01-01"))
	older, _ := s.AddTask(ctx, "older", "", day(t, "2023-12-01"))
	today, _ := s.AddTask(ctx, "today", "", ref)
	later, _ := s.AddTask(ctx, "later", "", day(t, "2024-07-01"))
	doneOld, _ := s.AddTask(ctx, "done old", "", day(t, "2024-01-02"))
	doneNew, _ := s.AddTask(ctx, "done new", "", day(t, "2024-08-01"))
	require.NoError(t, s.SetStatus(ctx, doneOld, task.Done))
	require.NoError(t, s.SetStatus(ctx, doneNew, task.Done))

	up, err := s.Upcoming(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []int{today, later}, ids(up))

	over, err := s.Overdue(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []int{old, older}, ids(over))

	done, err := s.Completed(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{doneNew, doneOld}, ids(done))
}

func TestSummaryViews_AgreeWithPartition(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	ref := day(t, "2024-06-01")

	dates := []string{"2024-05-30", "2024-05-31", "2024-06-01", "2024-06-02", "2023-01-01"}
	for i, d := range dates {
		id, err := s.AddTask(ctx, d, "", day(t, d))
		require.NoError(t, err)
		if i%2 == 0 {
			require.NoError(t, s.SetStatus(ctx, id, task.Done))
		}
	}

	all, err := s.Tasks(ctx)
	require.NoError(t, err)
	want := task.Partition(all, ref)

	up, _ := s.Upcoming(ctx, ref)
	over, _ := s.Overdue(ctx, ref)
	done, _ := s.Completed(ctx)
	assert.ElementsMatch(t, ids(want.Upcoming), ids(up))
	assert.ElementsMatch(t, ids(want.Overdue), ids(over))
	assert.ElementsMatch(t, ids(want.Completed), ids(done))
}

func TestOverdueScenario(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	ref := day(t, "2024-06-01")
	id, _ := s.AddTask(ctx, "stale", "", day(t, "2024-01-01"))

	over, _ := s.Overdue(ctx, ref)
	up, _ := s.Upcoming(ctx, ref)
	done, _ := s.Completed(ctx)
	assert.Equal(t, []int{id}, ids(over))
	assert.Empty(t, up)
	assert.Empty(t, done)
}

func TestTimerColumns(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	id, _ := s.AddTask(ctx, "work", "", day(t, "2024-03-01"))
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetTimerStart(ctx, id, &start))
	got, err := s.Task(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Running())

	require.NoError(t, s.CommitTimer(ctx, id, 95))
	got, err = s.Task(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Running())
	assert.Equal(t, 95, got.TotalSeconds)

	require.NoError(t, s.SetTotalSeconds(ctx, id, 12))
	got, _ = s.Task(ctx, id)
	assert.Equal(t, 12, got.TotalSeconds)
}

func TestUpdateTitleDescAndDelete(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	id, _ := s.AddTask(ctx, "draft", "", day(t, "2024-03-01"))

	require.NoError(t, s.UpdateTitleDesc(ctx, id, "final", "with notes"))
	got, err := s.Task(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, "with notes", got.Description)

	require.NoError(t, s.DeleteTask(ctx, id))
	_, err = s.Task(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingIDIsNoop(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	now := time.Now()

	assert.NoError(t, s.SetStatus(ctx, 404, task.Done))
	assert.NoError(t, s.SetTimerStart(ctx, 404, &now))
	assert.NoError(t, s.SetTotalSeconds(ctx, 404, 10))
	assert.NoError(t, s.CommitTimer(ctx, 404, 10))
	assert.NoError(t, s.UpdateTitleDesc(ctx, 404, "x", "y"))
	assert.NoError(t, s.SetOrder(ctx, 404, 1))
	assert.NoError(t, s.DeleteTask(ctx, 404))

	all, err := s.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	id, _ := s.AddTask(ctx, "long", "", day(t, "2024-03-01"))
	require.NoError(t, s.SetTimerStart(ctx, id, &start))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Task(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3600, task.DisplaySeconds(got, start.Add(time.Hour)))
}

func createLegacy(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", sqliteDSN(path))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
CREATE TABLE tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	task_date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'Yapılmadı',
	total_seconds INTEGER DEFAULT 0,
	active_timer_start TEXT
);`)
	require.NoError(t, err)

	rows := []struct{ title, date, status string }{
		{"b1", "2024-03-02", "Yapılmadı"},
		{"a1", "2024-03-01", "Yapıldı"},
		{"b2", "2024-03-02", "Yapıldı"},
		{"a2", "2024-03-01", "Yapılmadı"},
		{"b3", "2024-03-02", "Not done"},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO tasks (title, task_date, status) VALUES (?, ?, ?);`, r.title, r.date, r.status)
		require.NoError(t, err)
	}
}

func TestMigrate_LegacySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	createLegacy(t, path)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	a, err := s.TasksByDate(ctx, day(t, "2024-03-01"))
	require.NoError(t, err)
	require.Len(t, a, 2)
	assert.Equal(t, "a1", a[0].Title)
	assert.Equal(t, 0, a[0].SortOrder)
	assert.Equal(t, task.Done, a[0].Status)
	assert.Equal(t, "a2", a[1].Title)
	assert.Equal(t, 1, a[1].SortOrder)
	assert.Equal(t, task.NotDone, a[1].Status)

	b, err := s.TasksByDate(ctx, day(t, "2024-03-02"))
	require.NoError(t, err)
	require.Len(t, b, 3)
	assert.Equal(t, []string{"b1", "b2", "b3"}, []string{b[0].Title, b[1].Title, b[2].Title})
	assert.Equal(t, []int{0, 1, 2}, []int{b[0].SortOrder, b[1].SortOrder, b[2].SortOrder})

	var legacy int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE status NOT IN ('Done', 'Not done');`).Scan(&legacy))
	assert.Zero(t, legacy)
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	createLegacy(t, path)
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	// a user reorder between runs must survive the second upgrade
	b, _ := first.TasksByDate(ctx, day(t, "2024-03-02"))
	require.NoError(t, first.Reorder(ctx, day(t, "2024-03-02"), []int{b[2].ID, b[0].ID, b[1].ID}))
	once, err := first.Tasks(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.migrate(ctx))
	twice, err := second.Tasks(ctx)
	require.NoError(t, err)
	require.NoError(t, second.Close())

	assert.Equal(t, once, twice)
}

func TestMigrate_NormalizesStrayStatuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stray.db")
	db, err := sql.Open("sqlite", sqliteDSN(path))
	require.NoError(t, err)
	_, err = db.Exec(`
CREATE TABLE tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	task_date TEXT NOT NULL,
	status TEXT
);`)
	require.NoError(t, err)
	rows := []struct {
		title  string
		status any
	}{
		{"dash", "not-done"},
		{"lower", "done"},
		{"shout", " DONE "},
		{"blank", nil},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO tasks (title, task_date, status) VALUES (?, '2024-03-01', ?);`, r.title, r.status)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	all, err := s.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)

	ref := day(t, "2024-03-05")
	upcoming, err := s.Upcoming(ctx, ref)
	require.NoError(t, err)
	overdue, err := s.Overdue(ctx, ref)
	require.NoError(t, err)
	completed, err := s.Completed(ctx)
	require.NoError(t, err)

	assert.Empty(t, upcoming)
	assert.Equal(t, []string{"dash", "blank"}, titlesOf(overdue))
	assert.ElementsMatch(t, []string{"lower", "shout"}, titlesOf(completed))

	var stray int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM tasks WHERE status IS NULL OR status NOT IN ('Done', 'Not done');`).Scan(&stray))
	assert.Zero(t, stray)
}
