// Package migrate backs tasks up to JSONL and restores them.
//
// Each line is one schema.Task encoded as JSON, including soft-deleted
// tasks, so an export followed by an import into an empty database
// reproduces the original rows (ids, creation times and deletion flags).
package migrate

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 1 << 20

// Source lists tasks for export.
type Source interface {
	ListTasks(ctx context.Context, filter schema.ListFilter) ([]*schema.Task, error)
}

// Target restores tasks on import. RestoreTask reports false when a task
// with the same id already exists.
type Target interface {
	RestoreTask(ctx context.Context, task *schema.Task) (bool, error)
}

// Options controls an import.
type Options struct {
	// DryRun parses and validates without writing.
	DryRun bool
}

// Result summarizes an import.
type Result struct {
	Imported int
	Skipped  int
	Errors   []string
}

// Export writes every task, deleted ones included, to w. Tasks are written
// oldest first so that a re-import keeps the same relative order.
func Export(ctx context.Context, w io.Writer, src Source) (int, error) {
	tasks, err := src.ListTasks(ctx, schema.ListFilter{IncludeDeleted: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	count := 0
	for i := len(tasks) - 1; i >= 0; i-- {
		if err := enc.Encode(tasks[i]); err != nil {
			return count, fmt.Errorf("failed to encode task %s: %w", tasks[i].ID, err)
		}
		count++
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("failed to write export: %w", err)
	}
	return count, nil
}

// ExportFile writes the export to path atomically via a temp file.
func ExportFile(ctx context.Context, path string, src Source) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	tmpPath := path + ".tmp"
	// #nosec G304 - controlled path from CLI
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	count, err := Export(ctx, f, src)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close temp file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to rename temp file: %w", err)
	}
	return count, nil
}

// Import reads JSONL from r and restores each task. Malformed or invalid
// lines are recorded in Result.Errors and do not stop the import; storage
// failures do.
func Import(ctx context.Context, r io.Reader, dst Target, opts Options) (*Result, error) {
	result := &Result{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var task schema.Task
		if err := json.Unmarshal([]byte(line), &task); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: invalid JSON: %v", lineNum, err))
			continue
		}
		if strings.TrimSpace(task.ID) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing id", lineNum))
			continue
		}
		if err := task.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d (%s): %v", lineNum, task.ID, err))
			continue
		}
		if task.Status != "" && !task.Status.IsValid() {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d (%s): invalid status %q", lineNum, task.ID, task.Status))
			continue
		}

		if opts.DryRun {
			result.Imported++
			continue
		}

		inserted, err := dst.RestoreTask(ctx, &task)
		if err != nil {
			return result, fmt.Errorf("failed to restore task %s (line %d): %w", task.ID, lineNum, err)
		}
		if inserted {
			result.Imported++
		} else {
			result.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("failed to read JSONL at line %d: %w", lineNum+1, err)
	}

	return result, nil
}

// ImportFile opens path and imports it.
func ImportFile(ctx context.Context, path string, dst Target, opts Options) (*Result, error) {
	// #nosec G304 - controlled path from CLI
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL file: %w", err)
	}
	defer f.Close()

	return Import(ctx, f, dst, opts)
}
