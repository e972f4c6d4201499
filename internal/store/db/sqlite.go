// Package db provides the embedded SQLite handle behind the IdeaSpark task
// store.
//
// The database runs in embedded mode through the ncruces/go-sqlite3 driver
// with WAL enabled, so one writer and any number of readers can share the
// file. Every operation here is a single statement; callers never see a
// partially applied change.
//
// Architecture:
//   - Database file: ~/.ideaspark/ideaspark.db (configurable)
//   - Schema: one tasks table, status constrained by CHECK
//   - Indexes: listing filters (deleted, category, status) and created_at order
//
// This package knows nothing about initialization state. The store package
// owns the one live *DB and decides when it may be used.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// MemoryPath opens a private in-memory database. Used by tests.
const MemoryPath = ":memory:"

// DB wraps the SQLite connection pool.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates a new database connection at the specified path.
//
// The parent directory is created if needed. The schema is not touched;
// call InitSchema afterwards.
//
// The caller MUST call Close() when done.
//
// Example:
//
//	database, err := db.Open("/home/me/.ideaspark/ideaspark.db")
//	if err != nil {
//	    return err
//	}
//	defer database.Close()
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	memory := path == MemoryPath
	connStr := fmt.Sprintf("file:%s", path)
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if memory {
		// Each connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(8)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	db := &DB{
		conn: conn,
		path: path,
	}

	if !memory {
		if _, err := db.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Path returns the path the database was opened with.
func (db *DB) Path() string {
	return db.path
}

// RawDB returns the underlying sql.DB connection.
func (db *DB) RawDB() *sql.DB {
	return db.conn
}

// Close checkpoints the WAL and closes the connection. Closing twice is a no-op.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if db.path != MemoryPath {
		// Best effort; the WAL is replayed on next open anyway.
		_, _ = db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.conn = nil
	return nil
}

// InitSchema creates the tasks table and its indexes if they don't exist.
//
// It never drops or migrates existing data and is safe to call repeatedly.
func (db *DB) InitSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		due_date TEXT NOT NULL,
		created_at INTEGER NOT NULL,  -- epoch milliseconds
		category TEXT NOT NULL,
		status TEXT NOT NULL CHECK(status IN ('new', 'done')),
		deleted BOOLEAN NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);
	CREATE INDEX IF NOT EXISTS idx_tasks_listing ON tasks(deleted, category, status);
	`

	if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// InsertTask writes a new row with deleted = 0.
func (db *DB) InsertTask(ctx context.Context, task *schema.Task) error {
	query := `
	INSERT INTO tasks (id, title, description, due_date, created_at, category, status, deleted)
	VALUES (?, ?, ?, ?, ?, ?, ?, 0)
	`

	_, err := db.conn.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		timeToMillis(task.CreatedAt),
		task.Category,
		string(task.Status),
	)
	return err
}

// RestoreTask writes a row exactly as given, including its deleted flag.
// Rows whose id already exists are left alone; the return value reports
// whether the row was written.
func (db *DB) RestoreTask(ctx context.Context, task *schema.Task) (bool, error) {
	query := `
	INSERT INTO tasks (id, title, description, due_date, created_at, category, status, deleted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
	`

	res, err := db.conn.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		timeToMillis(task.CreatedAt),
		task.Category,
		string(task.Status),
		task.Deleted,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListTasks returns tasks matching filter, newest first.
//
// Rows created in the same millisecond are ordered by insertion, newest
// first, so the order always matches creation order reversed.
func (db *DB) ListTasks(ctx context.Context, filter schema.ListFilter) ([]*schema.Task, error) {
	var conditions []string
	var args []interface{}

	if !filter.IncludeDeleted {
		conditions = append(conditions, "deleted = 0")
	}

	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `
		SELECT id, title, description, due_date, created_at, category, status, deleted
		FROM tasks`

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// GetTask retrieves a single task by ID, deleted or not.
// Returns sql.ErrNoRows if the task is not found.
func (db *DB) GetTask(ctx context.Context, id string) (*schema.Task, error) {
	query := `
	SELECT id, title, description, due_date, created_at, category, status, deleted
	FROM tasks
	WHERE id = ?
	`

	task, err := scanTask(db.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskFields rewrites title, description and due date. Category,
// status and the deleted flag are not touched.
func (db *DB) UpdateTaskFields(ctx context.Context, id, title, description, dueDate string) (int64, error) {
	query := `UPDATE tasks SET title = ?, description = ?, due_date = ? WHERE id = ?`
	return db.execAffected(ctx, query, title, description, dueDate, id)
}

// ToggleDeleted inverts the deleted flag of one task.
func (db *DB) ToggleDeleted(ctx context.Context, id string) (int64, error) {
	query := `UPDATE tasks SET deleted = NOT deleted WHERE id = ?`
	return db.execAffected(ctx, query, id)
}

// SetStatus moves a task between new and done.
func (db *DB) SetStatus(ctx context.Context, id string, status schema.Status) (int64, error) {
	query := `UPDATE tasks SET status = ? WHERE id = ?`
	return db.execAffected(ctx, query, string(status), id)
}

// Stats summarizes the tasks table.
type Stats struct {
	Total    int                   `json:"total"`
	Active   int                   `json:"active"`
	Deleted  int                   `json:"deleted"`
	ByStatus map[schema.Status]int `json:"by_status"`
}

// CountTasks returns counts over every row, including soft-deleted ones.
// ByStatus only counts rows that are not deleted.
func (db *DB) CountTasks(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[schema.Status]int)}

	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN deleted THEN 1 ELSE 0 END), 0) FROM tasks`,
	).Scan(&stats.Total, &stats.Deleted)
	if err != nil {
		return nil, err
	}
	stats.Active = stats.Total - stats.Deleted

	rows, err := db.conn.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE deleted = 0 GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[schema.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (db *DB) execAffected(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
