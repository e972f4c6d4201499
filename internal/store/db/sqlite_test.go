package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// testDBPath returns a temporary path for test databases
func testDBPath(t *testing.T) string {
	tmpDir := t.TempDir()
	return filepath.Join(tmpDir, "nested", "test.db")
}

// openTestDB opens a file-backed database with the schema created.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(testDBPath(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return db
}

func testTask(id string, createdAt time.Time) *schema.Task {
	return &schema.Task{
		ID:          id,
		Title:       "Task " + id,
		Description: "Description " + id,
		DueDate:     "2024-06-01",
		Category:    "errands",
		Status:      schema.StatusNew,
		CreatedAt:   createdAt,
	}
}

func TestOpen_Success(t *testing.T) {
	path := testDBPath(t)
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("Open(\"\") succeeded, want error")
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	if err := db.InsertTask(context.Background(), testTask("m-1", time.Now())); err != nil {
		t.Fatalf("InsertTask() failed: %v", err)
	}
	tasks, err := db.ListTasks(context.Background(), schema.ListFilter{})
	if err != nil {
		t.Fatalf("ListTasks() failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("len(tasks) = %d, want 1", len(tasks))
	}
}

func TestClose_Twice(t *testing.T) {
	db, err := Open(testDBPath(t))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("first Close() failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.InsertTask(ctx, testTask("keep", time.Now())); err != nil {
		t.Fatalf("InsertTask() failed: %v", err)
	}

	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("second InitSchema() failed: %v", err)
	}

	// Existing rows survive re-initialization
	if _, err := db.GetTask(ctx, "keep"); err != nil {
		t.Errorf("GetTask() after re-init failed: %v", err)
	}
}

func TestInitSchema_StatusConstraint(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	bad := testTask("bad", time.Now())
	bad.Status = "archived"
	if err := db.InsertTask(ctx, bad); err == nil {
		t.Fatal("InsertTask() accepted status outside the CHECK constraint")
	}

	if err := db.InsertTask(ctx, testTask("good", time.Now())); err != nil {
		t.Fatalf("InsertTask() failed: %v", err)
	}
	if _, err := db.SetStatus(ctx, "good", "archived"); err == nil {
		t.Error("SetStatus() accepted status outside the CHECK constraint")
	}
}

func TestInsertAndGetTask(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created := time.Date(2024, 5, 30, 9, 12, 44, 120_000_000, time.UTC)
	want := testTask("t-1", created)

	if err := db.InsertTask(ctx, want); err != nil {
		t.Fatalf("InsertTask() failed: %v", err)
	}

	got, err := db.GetTask(ctx, "t-1")
	if err != nil {
		t.Fatalf("GetTask() failed: %v", err)
	}

	if got.Title != want.Title || got.Description != want.Description {
		t.Errorf("text fields = %q/%q, want %q/%q", got.Title, got.Description, want.Title, want.Description)
	}
	if got.DueDate != want.DueDate {
		t.Errorf("DueDate = %q, want %q", got.DueDate, want.DueDate)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.Deleted {
		t.Error("Deleted = true for a new row")
	}

	// created_at is stored as epoch milliseconds
	var raw int64
	if err := db.conn.QueryRow(`SELECT created_at FROM tasks WHERE id = ?`, "t-1").Scan(&raw); err != nil {
		t.Fatalf("raw created_at query failed: %v", err)
	}
	if raw != created.UnixMilli() {
		t.Errorf("created_at = %d, want %d", raw, created.UnixMilli())
	}
}

func TestGetTask_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetTask(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetTask() error = %v, want sql.ErrNoRows", err)
	}
}

func TestInsertTask_DuplicateID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.InsertTask(ctx, testTask("dup", time.Now())); err != nil {
		t.Fatalf("InsertTask() failed: %v", err)
	}
	if err := db.InsertTask(ctx, testTask("dup", time.Now())); err == nil {
		t.Error("InsertTask() accepted a duplicate id")
	}
}

func TestListTasks_Filters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []struct {
		id       string
		category string
		status   schema.Status
		deleted  bool
	}{
		{"a", "work", schema.StatusNew, false},
		{"b", "work", schema.StatusDone, false},
		{"c", "home", schema.StatusNew, false},
		{"d", "work", schema.StatusNew, true},
	}
	for i, r := range rows {
		task := testTask(r.id, base.Add(time.Duration(i)*time.Minute))
		task.Category = r.category
		task.Status = r.status
		task.Deleted = r.deleted
		if ok, err := db.RestoreTask(ctx, task); err != nil || !ok {
			t.Fatalf("RestoreTask(%s) = %v, %v", r.id, ok, err)
		}
	}

	tests := []struct {
		name   string
		filter schema.ListFilter
		want   []string
	}{
		{"default hides deleted", schema.ListFilter{}, []string{"c", "b", "a"}},
		{"include deleted", schema.ListFilter{IncludeDeleted: true}, []string{"d", "c", "b", "a"}},
		{"category", schema.ListFilter{Category: "work"}, []string{"b", "a"}},
		{"status", schema.ListFilter{Status: schema.StatusNew}, []string{"c", "a"}},
		{"category and status", schema.ListFilter{Category: "work", Status: schema.StatusNew}, []string{"a"}},
		{"all three", schema.ListFilter{Category: "work", Status: schema.StatusNew, IncludeDeleted: true}, []string{"d", "a"}},
		{"no match", schema.ListFilter{Category: "garden"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := db.ListTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTasks() failed: %v", err)
			}
			if len(tasks) != len(tt.want) {
				t.Fatalf("len(tasks) = %d, want %d", len(tasks), len(tt.want))
			}
			for i, id := range tt.want {
				if tasks[i].ID != id {
					t.Errorf("tasks[%d].ID = %q, want %q", i, tasks[i].ID, id)
				}
			}
		})
	}
}

func TestListTasks_SameMillisecondOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now()

	for _, id := range []string{"first", "second", "third"} {
		if err := db.InsertTask(ctx, testTask(id, now)); err != nil {
			t.Fatalf("InsertTask(%s) failed: %v", id, err)
		}
	}

	tasks, err := db.ListTasks(ctx, schema.ListFilter{})
	if err != nil {
		t.Fatalf("ListTasks() failed: %v", err)
	}
	want := []string{"third", "second", "first"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Errorf("tasks[%d].ID = %q, want %q", i, tasks[i].ID, id)
		}
	}
}

func TestUpdateTaskFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	task := testTask("u-1", time.Now())
	task.Status = schema.StatusDone
	if err := db.InsertTask(ctx, task); err != nil {
		t.Fatalf("InsertTask() failed: %v", err)
	}

	n, err := db.UpdateTaskFields(ctx, "u-1", "New title", "New desc", "2025-01-01")
	if err != nil {
		t.Fatalf("UpdateTaskFields() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("rows affected = %d, want 1", n)
	}

	got, err := db.GetTask(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetTask() failed: %v", err)
	}
	if got.Title != "New title" || got.Description != "New desc" || got.DueDate != "2025-01-01" {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.Category != "errands" || got.Status != schema.StatusDone || got.Deleted {
		t.Errorf("untouched fields changed: %+v", got)
	}

	n, err = db.UpdateTaskFields(ctx, "missing", "x", "y", "2025-01-01")
	if err != nil {
		t.Fatalf("UpdateTaskFields(missing) failed: %v", err)
	}
	if n != 0 {
		t.Errorf("rows affected for missing id = %d, want 0", n)
	}
}

func TestToggleDeleted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.InsertTask(ctx, testTask("x", time.Now())); err != nil {
		t.Fatalf("InsertTask() failed: %v", err)
	}

	for i, want := range []bool{true, false, true} {
		n, err := db.ToggleDeleted(ctx, "x")
		if err != nil {
			t.Fatalf("toggle %d failed: %v", i, err)
		}
		if n != 1 {
			t.Errorf("toggle %d rows affected = %d, want 1", i, n)
		}
		got, err := db.GetTask(ctx, "x")
		if err != nil {
			t.Fatalf("GetTask() failed: %v", err)
		}
		if got.Deleted != want {
			t.Errorf("after toggle %d Deleted = %v, want %v", i, got.Deleted, want)
		}
	}

	n, err := db.ToggleDeleted(ctx, "missing")
	if err != nil || n != 0 {
		t.Errorf("ToggleDeleted(missing) = %d, %v; want 0, nil", n, err)
	}
}

func TestRestoreTask_SkipsExisting(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	original := testTask("r-1", time.Now())
	if err := db.InsertTask(ctx, original); err != nil {
		t.Fatalf("InsertTask() failed: %v", err)
	}

	replacement := testTask("r-1", time.Now())
	replacement.Title = "Replaced"
	ok, err := db.RestoreTask(ctx, replacement)
	if err != nil {
		t.Fatalf("RestoreTask() failed: %v", err)
	}
	if ok {
		t.Error("RestoreTask() reported a write for an existing id")
	}

	got, _ := db.GetTask(ctx, "r-1")
	if got.Title != original.Title {
		t.Errorf("Title = %q, want %q", got.Title, original.Title)
	}
}

func TestCountTasks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	stats, err := db.CountTasks(ctx)
	if err != nil {
		t.Fatalf("CountTasks() on empty db failed: %v", err)
	}
	if stats.Total != 0 || stats.Deleted != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	for i, status := range []schema.Status{schema.StatusNew, schema.StatusNew, schema.StatusDone} {
		task := testTask(string(rune('a'+i)), time.Now())
		task.Status = status
		if err := db.InsertTask(ctx, task); err != nil {
			t.Fatalf("InsertTask() failed: %v", err)
		}
	}
	if _, err := db.ToggleDeleted(ctx, "a"); err != nil {
		t.Fatalf("ToggleDeleted() failed: %v", err)
	}

	stats, err = db.CountTasks(ctx)
	if err != nil {
		t.Fatalf("CountTasks() failed: %v", err)
	}
	if stats.Total != 3 || stats.Deleted != 1 || stats.Active != 2 {
		t.Errorf("stats = %+v, want total=3 deleted=1 active=2", stats)
	}
	if stats.ByStatus[schema.StatusNew] != 1 || stats.ByStatus[schema.StatusDone] != 1 {
		t.Errorf("ByStatus = %v, want new=1 done=1", stats.ByStatus)
	}
}
