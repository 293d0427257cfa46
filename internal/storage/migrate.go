package storage

import (
	"context"
	"database/sql"
	"fmt"

	"planner/internal/task"
)

func (s *Store) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	task_date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'Not done',
	total_seconds INTEGER DEFAULT 0,
	active_timer_start TEXT,
	sort_order INTEGER DEFAULT 0
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	added, err := s.ensureTaskColumns(ctx)
	if err != nil {
		return err
	}
	if added["sort_order"] {
		if err := s.backfillSortOrder(ctx); err != nil {
			return fmt.Errorf("backfill sort_order: %w", err)
		}
	}
	return s.migrateStatuses(ctx)
}

// ensureTaskColumns adds columns that older files lack and reports which ones
// it had to add.
func (s *Store) ensureTaskColumns(ctx context.Context) (map[string]bool, error) {
	required := []struct {
		name  string
		alter string
	}{
		{"description", `ALTER TABLE tasks ADD COLUMN description TEXT;`},
		{"total_seconds", `ALTER TABLE tasks ADD COLUMN total_seconds INTEGER DEFAULT 0;`},
		{"active_timer_start", `ALTER TABLE tasks ADD COLUMN active_timer_start TEXT;`},
		{"sort_order", `ALTER TABLE tasks ADD COLUMN sort_order INTEGER DEFAULT 0;`},
	}
	existing, err := s.columns(ctx)
	if err != nil {
		return nil, err
	}
	added := map[string]bool{}
	for _, col := range required {
		if existing[col.name] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, col.alter); err != nil {
			return nil, fmt.Errorf("add column %s: %w", col.name, err)
		}
		added[col.name] = true
	}
	return added, nil
}

func (s *Store) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `PRAGMA table_info(tasks);`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := map[string]bool{}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		existing[name] = true
	}
	return existing, rows.Err()
}

// backfillSortOrder numbers each day's tasks 0..n-1 by ascending id.
func (s *Store) backfillSortOrder(ctx context.Context) error {
	type row struct {
		id   int
		date string
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, task_date FROM tasks ORDER BY task_date, id;`)
	if err != nil {
		return err
	}
	var all []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.date); err != nil {
			rows.Close()
			return err
		}
		all = append(all, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	next := map[string]int{}
	for _, r := range all {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET sort_order = ? WHERE id = ?;`, next[r.date], r.id); err != nil {
			return err
		}
		next[r.date]++
	}
	return tx.Commit()
}

// migrateStatuses rewrites every status outside the current two tokens,
// including NULL, onto "Not done" or "Done" so the view queries see each row.
func (s *Store) migrateStatuses(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT status FROM tasks WHERE status IS NULL OR status NOT IN (?, ?);`,
		string(task.NotDone), string(task.Done))
	if err != nil {
		return err
	}
	var stale []sql.NullString
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		stale = append(stale, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, v := range stale {
		current := task.ParseStatus(v.String)
		var match any
		if v.Valid {
			match = v.String
		}
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE status IS ?;`, string(current), match); err != nil {
			return fmt.Errorf("migrate status %q: %w", v.String, err)
		}
	}
	return tx.Commit()
}
