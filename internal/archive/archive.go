// Package archive persists finished requirement-generation tasks in a
// local SQLite database so results survive process restarts.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/elicit-dev/elicit/internal/pipeline"
	"github.com/elicit-dev/elicit/internal/tasks"
)

var ErrNotFound = errors.New("archived task not found")

// Entry is one archived task.
type Entry struct {
	ID         string           `json:"id"`
	Brief      string           `json:"initial_requirements"`
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Results    pipeline.Results `json:"results"`
	CreatedAt  time.Time        `json:"created_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// Archive is a SQLite-backed store of finished tasks.
type Archive struct {
	db *sql.DB
}

// Open creates (if needed) and opens the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("archive: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("archive: pragma %q: %w", p, err)
		}
	}

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		return nil, fmt.Errorf("archive: migration: %w", err)
	}
	return a, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			brief       TEXT NOT NULL,
			status      TEXT NOT NULL,
			message     TEXT NOT NULL,
			results     TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_finished ON tasks(finished_at DESC);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Save stores a finished task. Saving the same id again replaces the
// earlier row.
func (a *Archive) Save(ctx context.Context, task tasks.Task) error {
	var results pipeline.Results
	if task.Results != nil {
		results = *task.Results
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("archive: encode results: %w", err)
	}

	_, err = a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tasks (id, brief, status, message, results, created_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Brief, string(task.Status), task.Message, string(payload),
		task.CreatedAt.UTC().Format(time.RFC3339), task.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("archive: save task %s: %w", task.ID, err)
	}
	return nil
}

// Get retrieves an archived task by id.
func (a *Archive) Get(ctx context.Context, id string) (Entry, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id, brief, status, message, results, created_at, finished_at FROM tasks WHERE id = ?`, id)

	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("archive: get task %s: %w", id, err)
	}
	return entry, nil
}

// Recent returns the most recently finished tasks, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT id, brief, status, message, results, created_at, finished_at
		 FROM tasks ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: list tasks: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("archive: scan task: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scan func(...any) error) (Entry, error) {
	var (
		entry    Entry
		payload  string
		created  string
		finished string
	)
	if err := scan(&entry.ID, &entry.Brief, &entry.Status, &entry.Message, &payload, &created, &finished); err != nil {
		return Entry{}, err
	}

	if err := json.Unmarshal([]byte(payload), &entry.Results); err != nil {
		return Entry{}, fmt.Errorf("decode results: %w", err)
	}
	entry.CreatedAt, _ = time.Parse(time.RFC3339, created)
	entry.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return entry, nil
}

var _ tasks.Archiver = (*Archive)(nil)
