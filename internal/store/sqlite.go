package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nibzard/taskdesk/internal/task"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS task_file (
	id     INTEGER PRIMARY KEY CHECK (id = 1),
	header TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	position     INTEGER PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL,
	done         TEXT NOT NULL,
	due_date     TEXT NOT NULL,
	created_date TEXT NOT NULL,
	updated_date TEXT NOT NULL,
	priority     TEXT NOT NULL,
	overdue      TEXT NOT NULL
);`

const taskColumns = `title, description, done, due_date, created_date, updated_date, priority, overdue`

// SQLite stores the task list in a SQLite database with one column per
// record field, so the tasks table can be queried directly. The header
// lives in task_file. Every write replaces both tables in one transaction.
// Fields are kept as the text the record carries; Read joins them back into
// record lines for the store to parse.
type SQLite struct {
	Path string
	db   *sql.DB
}

// NewSQLite returns a database backend at path. The database is opened on
// first use.
func NewSQLite(path string) *SQLite {
	return &SQLite{Path: path}
}

// Location returns the database path.
func (s *SQLite) Location() string {
	return s.Path
}

func (s *SQLite) open() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s.db = db
	return db, nil
}

// Read returns the header and one record line per task in position order.
// A database file that does not exist yet reads as empty and is not created.
func (s *SQLite) Read() ([]string, error) {
	if s.db == nil {
		if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	db, err := s.open()
	if err != nil {
		return nil, err
	}

	var header string
	err = db.QueryRow(`SELECT header FROM task_file WHERE id = 1`).Scan(&header)
	written := !errors.Is(err, sql.ErrNoRows)
	if err != nil && written {
		return nil, fmt.Errorf("query header: %w", err)
	}

	rows, err := db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	lines := []string{header}
	fields := make([]string, task.RecordFields)
	dest := make([]any, task.RecordFields)
	for i := range fields {
		dest[i] = &fields[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	if !written && len(lines) == 1 {
		return nil, nil
	}
	return lines, nil
}

// Write replaces the stored header and tasks. A record without exactly
// task.RecordFields fields fails the write and leaves the database as it was.
func (s *SQLite) Write(header string, records []string) error {
	db, err := s.open()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO task_file (id, header) VALUES (1, ?)`, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO tasks (position, ` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, task.RecordFields+1)
	for i, r := range records {
		fields := strings.Split(r, ",")
		if len(fields) != task.RecordFields {
			return fmt.Errorf("task %d: %w", i+1, &task.RecordFormatError{Format: "record", Expected: task.RecordFields, Actual: len(fields)})
		}
		args[0] = i + 1
		for j, f := range fields {
			args[j+1] = f
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert task %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
