package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"planner/internal/task"
)

var (
	ErrNotFound   = errors.New("task not found")
	ErrEmptyTitle = errors.New("task title is empty")
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const selectColumns = `SELECT id, title, description, task_date, status, total_seconds, active_timer_start, sort_order FROM tasks`

func (s *Store) AddTask(ctx context.Context, title, desc string, day time.Time) (int, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrEmptyTitle
	}
	date := task.FormatDate(day)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM tasks WHERE task_date = ?;`, date).Scan(&next)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (title, description, task_date, status, total_seconds, active_timer_start, sort_order)
		 VALUES (?, ?, ?, ?, 0, NULL, ?);`,
		title, desc, date, string(task.NotDone), next)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(id), nil
}

func (s *Store) Task(ctx context.Context, id int) (task.Task, error) {
	tasks, err := s.query(ctx, selectColumns+` WHERE id = ?;`, id)
	if err != nil {
		return task.Task{}, err
	}
	if len(tasks) == 0 {
		return task.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return tasks[0], nil
}

// Tasks returns every stored task ordered by id.
func (s *Store) Tasks(ctx context.Context) ([]task.Task, error) {
	return s.query(ctx, selectColumns+` ORDER BY id;`)
}

func (s *Store) TasksByDate(ctx context.Context, day time.Time) ([]task.Task, error) {
	return s.query(ctx, selectColumns+` WHERE task_date = ? ORDER BY sort_order, id;`, task.FormatDate(day))
}

// Upcoming lists unfinished tasks dated on or after ref.
func (s *Store) Upcoming(ctx context.Context, ref time.Time) ([]task.Task, error) {
	return s.query(ctx, selectColumns+` WHERE status = ? AND task_date >= ? ORDER BY task_date, sort_order, id;`,
		string(task.NotDone), task.FormatDate(ref))
}

// Overdue lists unfinished tasks dated strictly before ref, newest day first.
func (s *Store) Overdue(ctx context.Context, ref time.Time) ([]task.Task, error) {
	return s.query(ctx, selectColumns+` WHERE status = ? AND task_date < ? ORDER BY task_date DESC, sort_order, id;`,
		string(task.NotDone), task.FormatDate(ref))
}

func (s *Store) Completed(ctx context.Context) ([]task.Task, error) {
	return s.query(ctx, selectColumns+` WHERE status = ? ORDER BY task_date DESC, sort_order, id;`,
		string(task.Done))
}

func (s *Store) SetStatus(ctx context.Context, id int, status task.Status) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?;`, string(status), id)
	return err
}

// SetTimerStart opens (start != nil) or clears the timer column. Clearing it
// without committing elapsed time loses that time; CommitTimer is the stop path.
func (s *Store) SetTimerStart(ctx context.Context, id int, start *time.Time) error {
	val := sql.NullString{}
	if start != nil {
		val = sql.NullString{String: task.FormatTimestamp(*start), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET active_timer_start = ? WHERE id = ?;`, val, id)
	return err
}

func (s *Store) SetTotalSeconds(ctx context.Context, id, seconds int) error {
	if seconds < 0 {
		seconds = 0
	}
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET total_seconds = ? WHERE id = ?;`, seconds, id)
	return err
}

// CommitTimer stores the new total and closes the timer in one statement.
func (s *Store) CommitTimer(ctx context.Context, id, total int) error {
	if total < 0 {
		total = 0
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET total_seconds = ?, active_timer_start = NULL WHERE id = ?;`, total, id)
	return err
}

func (s *Store) UpdateTitleDesc(ctx context.Context, id int, title, desc string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ? WHERE id = ?;`, title, desc, id)
	return err
}

func (s *Store) SetOrder(ctx context.Context, id, order int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET sort_order = ? WHERE id = ?;`, order, id)
	return err
}

// Reorder assigns positions 0..n-1 following ids. Ids dated on another day
// are skipped; the whole rewrite commits or rolls back together.
func (s *Store) Reorder(ctx context.Context, day time.Time, ids []int) error {
	date := task.FormatDate(day)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE tasks SET sort_order = ? WHERE id = ? AND task_date = ?;`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for order, id := range ids {
		if _, err := stmt.ExecContext(ctx, order, id, date); err != nil {
			return fmt.Errorf("reorder task %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *Store) DeleteTask(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	return err
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var (
			t         task.Task
			desc      sql.NullString
			dateStr   string
			status    sql.NullString
			total     sql.NullInt64
			sortOrder sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Title, &desc, &dateStr, &status, &total, &t.ActiveTimerStart, &sortOrder); err != nil {
			return nil, err
		}
		t.Description = desc.String
		t.Status = task.ParseStatus(status.String)
		t.TotalSeconds = int(total.Int64)
		t.SortOrder = int(sortOrder.Int64)
		if parsed, err := task.ParseDate(dateStr); err == nil {
			t.Date = parsed
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
