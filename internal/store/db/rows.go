package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask maps one tasks row onto a schema.Task.
func scanTask(row rowScanner) (*schema.Task, error) {
	var task schema.Task
	var status string
	var createdAt int64

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&createdAt,
		&task.Category,
		&status,
		&task.Deleted,
	)
	if err != nil {
		return nil, err
	}

	task.Status = schema.Status(status)
	task.CreatedAt = millisToTime(createdAt)
	return &task, nil
}

// scanTasks collects every row of a task query.
func scanTasks(rows *sql.Rows) ([]*schema.Task, error) {
	tasks := []*schema.Task{}

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// timeToMillis converts a timestamp to the stored epoch-millisecond form.
func timeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// millisToTime converts a stored epoch-millisecond value back to UTC.
func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
